package middleware

import (
	"errors"
	"net/http"
	"strings"
	"taskmanager/internal/auth"
	"taskmanager/internal/logger"

	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(token string) (auth.Identity, error)
}

// Authenticate проверяет заголовок Authorization: Bearer <token> и кладёт личность в контекст.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestId := GetRequestID(r.Context())

			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				writeError(w, http.StatusUnauthorized, "No authorization header provided")
				return
			}

			scheme, token, _ := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "No token provided in authorization header")
				return
			}
			if !strings.EqualFold(scheme, "Bearer") {
				writeError(w, http.StatusForbidden, "Invalid token format")
				return
			}

			identity, err := tokens.Parse(token)
			if err != nil {
				logger.Warn("HTTP: Ошибка проверки токена",
					zap.String("request_id", requestId),
					zap.Error(err))

				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					writeError(w, http.StatusForbidden, "Token expired - please login again")
				case errors.Is(err, auth.ErrTokenInvalid):
					writeError(w, http.StatusForbidden, "Invalid token format")
				default:
					writeError(w, http.StatusForbidden, "Token validation failed")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}
