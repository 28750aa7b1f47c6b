package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-notify/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-notify/internal/pkg/identity"
	"github.com/go-chi/jwtauth/v5"
)

// BearerAuth verifies the Authorization bearer token and stores the verified
// identity in the request context.
func BearerAuth(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			raw := jwtauth.TokenFromHeader(r)
			if raw == "" {
				response.HandleError(w, identity.ErrMissingToken)
				return
			}

			id, err := verifier.VerifyToken(r.Context(), raw)
			if err != nil {
				slog.Debug("Bearer token rejected", "error", err)
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		}
		return http.HandlerFunc(hfn)
	}
}
