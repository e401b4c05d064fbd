package handler

import (
	"account-server/config"
	"account-server/internal/model"
	"account-server/internal/ports"
	"account-server/internal/security"
	"context"
	"log"
	"net/http"
	"strings"
)

// AuthMiddleware проверяет access токен на каждом защищённом запросе:
// подпись и срок действия, затем отсутствие в блэклисте. Прошедший
// проверку запрос отмечает активность пользователя и несёт claims в контексте.
func AuthMiddleware(
	jwtService ports.JWTServiceInterface,
	blacklist ports.BlacklistServiceInterface,
	activity ports.ActivityTracker,
) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				sendErrorResponse(writer, http.StatusUnauthorized, "токен не передан")
				return
			}

			token := strings.TrimPrefix(authorizationHeader, "Bearer ")

			claims, err := jwtService.VerifyAccess(token)
			if err != nil {
				log.Printf("невалидный токен: %v", err)
				sendErrorResponse(writer, http.StatusUnauthorized, "невалидный токен")
				return
			}

			revoked, err := blacklist.IsRevoked(request.Context(), token)
			if err != nil {
				log.Printf("ошибка проверки блэклиста: %v", err)
				sendErrorResponse(writer, http.StatusInternalServerError, "внутренняя ошибка сервера")
				return
			}
			if revoked {
				sendErrorResponse(writer, http.StatusUnauthorized, "невалидный токен")
				return
			}

			activity.Touch(request.Context(), claims.UserID)

			req := request.WithContext(context.WithValue(request.Context(), security.UserContextKey, claims))
			next.ServeHTTP(writer, req)
		})
	}
}

// AdminMiddleware пускает дальше только действующего незаблокированного
// администратора. Роль читается из свежей строки, а не из claims:
// токен мог быть выдан до передачи прав.
func AdminMiddleware(db *config.Database, userRepository ports.UserRepository) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims, err := security.GetClaimsFromContext(request.Context())
			if err != nil {
				sendErrorResponse(writer, http.StatusUnauthorized, "не авторизован")
				return
			}

			user, err := userRepository.FindByID(request.Context(), db, claims.UserID)
			if err != nil {
				sendErrorResponse(writer, http.StatusUnauthorized, "не авторизован")
				return
			}
			if user.Role != model.RoleAdmin || user.IsBlocked {
				sendErrorResponse(writer, http.StatusForbidden, "доступ запрещён")
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
