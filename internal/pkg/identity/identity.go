// Package identity verifies bearer tokens and carries the verified subject
// through the request context.
package identity

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/jwt"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the verified subject of a bearer token.
type Identity struct {
	UID   string
	Email string
}

type Verifier interface {
	VerifyToken(ctx context.Context, raw string) (Identity, error)
}

type jwtVerifier struct {
	svc jwt.Service
}

// NewJWTVerifier verifies HS256 access tokens issued by this service.
func NewJWTVerifier(svc jwt.Service) Verifier {
	return &jwtVerifier{svc: svc}
}

func (v *jwtVerifier) VerifyToken(_ context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMissingToken
	}
	uid, email, err := v.svc.ValidateAccessToken(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Identity{UID: uid, Email: email}, nil
}

// IDTokenVerifier is the subset of *auth.Client used for verification.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type firebaseVerifier struct {
	client IDTokenVerifier
}

// NewFirebaseVerifier verifies Firebase ID tokens.
func NewFirebaseVerifier(client IDTokenVerifier) Verifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) VerifyToken(ctx context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMissingToken
	}
	token, err := v.client.VerifyIDToken(ctx, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ := token.Claims["email"].(string)
	return Identity{UID: token.UID, Email: email}, nil
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.UID != ""
}
