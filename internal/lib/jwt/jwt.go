package jwt

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"sharedspace/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const uidKey = models.ContextKey("uid")

func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "invalid claims", http.StatusUnauthorized)
				return
			}

			userID, ok := claims["uid"].(float64)
			if !ok || userID <= 0 {
				http.Error(w, "invalid user_id claim", http.StatusUnauthorized)
				return
			}

			ctx := WithUserID(r.Context(), int64(userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID stores the authenticated user id the way AuthMiddleware does.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, uidKey, float64(userID))
}

// UserID returns the authenticated user id, or false when the request is anonymous.
func UserID(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(uidKey).(float64)
	if !ok || uid <= 0 {
		return 0, false
	}
	return int64(uid), true
}
