package handlers

import (
	"context"
	"net/http"
	"strings"

	"guidehire/internal/offers"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Claims are the token claims issued by the external auth provider.
type Claims struct {
	ActorID int    `json:"actorId"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates the bearer token and stores the caller as an
// explicit Actor in the request context.
func Authenticator(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "Missing token", http.StatusUnauthorized)
				return
			}
			parts := strings.Split(auth, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid token format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			claims, ok := token.Claims.(*Claims)
			if !ok || claims.ActorID <= 0 {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			actor := offers.Actor{ID: claims.ActorID, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// RequireRole rejects callers whose token carries a different role.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				http.Error(w, "Missing actor", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// ContextWithActor attaches the caller identity to a request context.
func ContextWithActor(ctx context.Context, actor offers.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func ActorFromContext(ctx context.Context) (offers.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(offers.Actor)
	return actor, ok
}
