package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/offsync/internal/server/handlers"
	"github.com/iudanet/offsync/internal/server/jwt"
)

// TokenValidator проверяет bearer токен клиента
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware создает middleware для проверки JWT токена
func AuthMiddleware(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("missing Authorization header", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "unauthorized: missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.Warn("invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, "unauthorized: invalid token format")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("invalid access token", "error", err)
				writeError(w, http.StatusUnauthorized, "unauthorized: invalid token")
				return
			}

			logger.Debug("client authenticated", "client_id", claims.ClientID)
			next.ServeHTTP(w, r.WithContext(handlers.WithClientID(r.Context(), claims.ClientID)))
		})
	}
}
