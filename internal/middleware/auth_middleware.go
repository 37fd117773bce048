package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"passvault-server/pkg/jwt"
	"passvault-server/pkg/response"
)

type contextKey string

const UserIDKey contextKey = "userID"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// AuthMiddleware authenticates requests from the session cookie, falling
// back to an Authorization bearer header. When both are present the
// cookie wins.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				response.Unauthorized(w, "Missing session token")
				return
			}

			claims, err := jwt.ValidateToken(token, jwtSecret)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Session expired")
					return
				}
				response.Unauthorized(w, "Invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

func GetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
