package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/versusleague/internal/api/apierr"
	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/services/auth"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth rejects requests without a valid bearer token and makes the token's
// account the sender of the request
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateToken(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// MustGetSender returns the authenticated account as a call sender, or
// panics when the auth middleware was not applied
func MustGetSender(ctx context.Context) model.Address {
	session := GetSession(ctx)
	if session == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return model.AccountAddress(session.Account)
}
