package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/luminospark/asambal-system/auth"
	"github.com/luminospark/asambal-system/models"
)

type contextKey string

const (
	claimsContextKey     contextKey = "claims"
	activeClubContextKey contextKey = "activeClub"
)

// ActiveClubHeader selects which of the caller's club memberships the
// request acts on.
const ActiveClubHeader = "X-Club-Id"

// Authenticate verifies the bearer access token and stores its claims
// in the request context.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.VerifyAccessToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group on the token's role set.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !models.HasAnyRole(claims.Roles, roles...) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResolveActiveClub validates the X-Club-Id header against the token's
// memberships and stores the resolved club id in the context.
func ResolveActiveClub(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		clubID := r.Header.Get(ActiveClubHeader)
		if clubID == "" && len(claims.Clubs) == 1 {
			clubID = claims.Clubs[0].ClubID
		}
		for _, c := range claims.Clubs {
			if c.ClubID == clubID {
				ctx := context.WithValue(r.Context(), activeClubContextKey, clubID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	})
}
