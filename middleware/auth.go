package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/betting-pool/models"
	"github.com/Dosada05/betting-pool/services"
)

// TokenResolver резолвит bearer-токен в пользователя. Реализуется services.AuthService.
type TokenResolver interface {
	UserFromToken(ctx context.Context, token string) (*models.User, error)
}

// Authenticate требует заголовок Authorization: Bearer <jwt> и кладёт пользователя в контекст.
func Authenticate(auth TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid token, authentication required")
				return
			}

			user, err := auth.UserFromToken(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, services.ErrExpiredToken),
					errors.Is(err, services.ErrInvalidToken),
					errors.Is(err, services.ErrUserNotFound):
					writeError(w, http.StatusUnauthorized, capitalize(err.Error()))
				default:
					slog.Error("failed to resolve bearer token", slog.String("path", r.URL.Path), slog.Any("error", err))
					writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin пропускает только администратора. Ставится после Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			writeError(w, http.StatusUnauthorized, capitalize(services.ErrUnauthorizedAccessToAdminAPI.Error()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
