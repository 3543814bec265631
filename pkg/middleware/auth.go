package middleware

import (
	"context"
	"net/http"
	"strings"

	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

const principalKey contextKey = "principal"

// Claims mirror what the external identity provider issues. Role granting
// happens there; this service only verifies and forwards the claims.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate verifies the bearer token and stores the resulting Principal
// in the request context. Handlers pull it out with PrincipalFrom and pass
// it explicitly into services.
func Authenticate(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Missing token")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w, "Invalid token format")
				return
			}

			claims := &Claims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				return key, nil
			})
			if err != nil || !parsed.Valid {
				log.Warn("Token verification failed",
					"request_id", requestIDFrom(r.Context()),
					"error", err,
				)
				unauthorized(w, "Invalid token")
				return
			}

			principal := model.Principal{
				UID:   claims.UID,
				Email: claims.Email,
				Role:  claims.Role,
			}
			if principal.UID == "" {
				unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFrom returns the authenticated caller stored by Authenticate.
func PrincipalFrom(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok
}

// WithPrincipal is a test seam for injecting an authenticated caller.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
