package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	tokenTypeAccess = "access"
	tokenTypeSSE    = "sse"
)

type Service interface {
	GenerateAccessToken(userID string, email string, roles []string) (token string, expiresAt int64, err error)
	ValidateAccessToken(tokenString string) (userID string, email string, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, email string, roles []string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"roles":   roles,
		"type":    tokenTypeAccess,
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ValidateAccessToken checks signature, expiry and token type.
func (j *JWTService) ValidateAccessToken(tokenString string) (userID string, email string, err error) {
	userID, claims, err := j.decode(tokenString, tokenTypeAccess)
	if err != nil {
		return "", "", err
	}
	email, _ = claims["email"].(string)
	return userID, email, nil
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    tokenTypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the user ID
func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	userID, _, err = j.decode(tokenString, tokenTypeSSE)
	return userID, err
}

func (j *JWTService) decode(tokenString, wantType string) (string, map[string]interface{}, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", nil, err
	}

	claims := token.PrivateClaims()
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != wantType {
		return "", nil, jwt.ErrInvalidJWT()
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", nil, jwt.ErrInvalidJWT()
	}

	return userID, claims, nil
}
