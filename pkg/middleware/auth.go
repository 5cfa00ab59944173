package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// The fronting proxy authenticates users and forwards the verified identity
// in this header, in the form `accounts.google.com:user@example.com`.
const authenticatedUserHeader = "X-Goog-Authenticated-User-Email"

type contextKey int

const (
	contextKeyEmail contextKey = iota
	contextKeyCorrelationID
)

// ContextWithAuthenticatedEmail returns a context carrying the verified email
// of the caller.
func ContextWithAuthenticatedEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, contextKeyEmail, email)
}

// AuthenticatedEmail returns the verified email of the caller, or an empty
// string for unauthenticated requests.
func AuthenticatedEmail(ctx context.Context) string {
	email, _ := ctx.Value(contextKeyEmail).(string)
	return email
}

// RequireAuthenticatedEmail rejects requests that do not carry a proxy
// verified user identity.
func RequireAuthenticatedEmail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := r.Header.Get(authenticatedUserHeader)
		if _, after, found := strings.Cut(email, ":"); found {
			email = after
		}

		if email == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "authentication required",
			})
			return
		}

		ctx := ContextWithAuthenticatedEmail(r.Context(), email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
