package handler

import (
	"account-server/internal/model/requestresponse"
	"account-server/internal/ports"
	"account-server/internal/security"
	"encoding/json"
	"net/http"
	"strings"
)

type AuthenticationHandler struct {
	sessionService ports.SessionService
	jwtService     ports.JWTServiceInterface
}

func NewAuthenticationHandler(
	sessionService ports.SessionService,
	jwtService ports.JWTServiceInterface,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		sessionService: sessionService,
		jwtService:     jwtService,
	}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Получение пары токенов по email и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 404 {object} requestresponse.ErrorResponse "Неверный email или пароль"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.Password == "" {
		sendErrorResponse(w, http.StatusBadRequest, "email и password обязательны")
		return
	}

	user, err := h.sessionService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	tokens, err := h.sessionService.Login(ctx, user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendTokensResponse(w, tokens)
}

// RefreshToken godoc
// @Summary Обновление токенов
// @Description Ротация: обменивает действующий refresh токен на новую пару
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse "Новые access и refresh токены"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный или устаревший refresh токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.RefreshToken == "" {
		sendErrorResponse(w, http.StatusUnauthorized, "токен не передан")
		return
	}

	claims, err := h.jwtService.VerifyRefresh(req.RefreshToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	tokens, err := h.sessionService.Refresh(ctx, claims.UserID, req.RefreshToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendTokensResponse(w, tokens)
}

// Logout godoc
// @Summary Завершение авторизованной сессии
// @Description Сбрасывает refresh токен пользователя и гасит текущий access токен
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	accessToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.sessionService.Logout(ctx, claims.UserID, accessToken); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "сессия завершена")
}

// GetCurrentUser godoc
// @Summary Информация о текущем пользователе
// @Description Возвращает идентификатор пользователя из access токена
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthenticationHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	resp := requestresponse.CurrentUserResponse{}
	resp.Response.UserID = claims.UserID

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
