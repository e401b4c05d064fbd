package handler

import (
	"account-server/internal/model/requestresponse"
	"account-server/internal/ports"
	"account-server/internal/security"
	"encoding/json"
	"net/http"
	"strings"
)

// AccountHandler обслуживает переходы состояния аккаунта:
// регистрацию, сброс и смену пароля, смену email, привязку телефона.
type AccountHandler struct {
	registrationService      ports.RegistrationService
	passwordResetService     ports.PasswordResetService
	emailChangeService       ports.EmailChangeService
	passwordChangeService    ports.PasswordChangeService
	phoneVerificationService ports.PhoneVerificationService
}

func NewAccountHandler(
	registrationService ports.RegistrationService,
	passwordResetService ports.PasswordResetService,
	emailChangeService ports.EmailChangeService,
	passwordChangeService ports.PasswordChangeService,
	phoneVerificationService ports.PhoneVerificationService,
) *AccountHandler {
	return &AccountHandler{
		registrationService:      registrationService,
		passwordResetService:     passwordResetService,
		emailChangeService:       emailChangeService,
		passwordChangeService:    passwordChangeService,
		phoneVerificationService: phoneVerificationService,
	}
}

// Register godoc
// @Summary Начало регистрации
// @Description Шлёт на указанный email ссылку подтверждения. Ответ не раскрывает, существует ли аккаунт
// @Tags Account
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/register [post]
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.Password == "" {
		sendErrorResponse(w, http.StatusBadRequest, "email и password обязательны")
		return
	}

	if err := h.registrationService.Request(r.Context(), req.Email, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "письмо отправлено")
}

// ConfirmRegistration godoc
// @Summary Подтверждение регистрации
// @Description Создаёт аккаунт по одноразовому токену и выдаёт пару токенов
// @Tags Account
// @Accept json
// @Produce json
// @Param body body requestresponse.ConfirmTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Токен не найден или просрочен"
// @Failure 409 {object} requestresponse.ErrorResponse "Email уже занят"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/register/confirm [post]
func (h *AccountHandler) ConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.ConfirmTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Token == "" {
		sendErrorResponse(w, http.StatusBadRequest, "токен не передан")
		return
	}

	tokens, err := h.registrationService.Confirm(r.Context(), req.Token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendTokensResponse(w, tokens)
}

// RequestPasswordReset godoc
// @Summary Запрос сброса пароля
// @Description Шлёт ссылку сброса, если аккаунт существует. Ответ одинаков в обоих случаях
// @Tags Account
// @Accept json
// @Produce json
// @Param body body requestresponse.PasswordResetRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/password-reset [post]
func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.PasswordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Email == "" {
		sendErrorResponse(w, http.StatusBadRequest, "email обязателен")
		return
	}

	if err := h.passwordResetService.Request(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "письмо отправлено")
}

// ConfirmPasswordReset godoc
// @Summary Подтверждение сброса пароля
// @Description Устанавливает новый пароль, отзывает все сессии и выдаёт новую пару токенов
// @Tags Account
// @Accept json
// @Produce json
// @Param body body requestresponse.PasswordResetConfirmRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Токен не найден или просрочен"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/password-reset/confirm [post]
func (h *AccountHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req requestresponse.PasswordResetConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		sendErrorResponse(w, http.StatusBadRequest, "token и new_password обязательны")
		return
	}

	tokens, err := h.passwordResetService.Confirm(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendTokensResponse(w, tokens)
}

// RequestEmailChange godoc
// @Summary Запрос смены email
// @Description Шлёт ссылку подтверждения на новый адрес
// @Tags Account
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.EmailChangeRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Новый адрес совпадает с текущим"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Адрес уже занят"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/email [post]
func (h *AccountHandler) RequestEmailChange(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.EmailChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.NewEmail == "" {
		sendErrorResponse(w, http.StatusBadRequest, "new_email обязателен")
		return
	}

	if err := h.emailChangeService.Request(r.Context(), claims.UserID, req.NewEmail); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "письмо отправлено")
}

// ConfirmEmailChange godoc
// @Summary Подтверждение смены email
// @Description Меняет email и выдаёт новую пару токенов
// @Tags Account
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.ConfirmTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Токен принадлежит другому пользователю"
// @Failure 404 {object} requestresponse.ErrorResponse "Токен не найден или просрочен"
// @Failure 409 {object} requestresponse.ErrorResponse "Адрес успели занять"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/email/confirm [post]
func (h *AccountHandler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.ConfirmTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Token == "" {
		sendErrorResponse(w, http.StatusBadRequest, "токен не передан")
		return
	}

	tokens, err := h.emailChangeService.Confirm(r.Context(), claims.UserID, req.Token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendTokensResponse(w, tokens)
}

// RequestPasswordChange godoc
// @Summary Запрос смены пароля
// @Description Сверяет старый пароль и возвращает одноразовый токен смены
// @Tags Account
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.PasswordChangeRequest true "Тело запроса"
// @Success 200 {object} requestresponse.PasswordChangeTokenResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный старый пароль"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/password [post]
func (h *AccountHandler) RequestPasswordChange(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.PasswordChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.OldPassword == "" {
		sendErrorResponse(w, http.StatusBadRequest, "old_password обязателен")
		return
	}

	tokenStr, err := h.passwordChangeService.Request(r.Context(), claims.UserID, req.OldPassword)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := requestresponse.PasswordChangeTokenResponse{}
	resp.Response.Token = tokenStr

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// ConfirmPasswordChange godoc
// @Summary Подтверждение смены пароля
// @Description Меняет пароль, отзывает старые сессии и выдаёт новую пару токенов
// @Tags Account
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.PasswordChangeConfirmRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Новый пароль совпадает со старым"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Токен принадлежит другому пользователю"
// @Failure 404 {object} requestresponse.ErrorResponse "Токен не найден или просрочен"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/password/confirm [post]
func (h *AccountHandler) ConfirmPasswordChange(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.PasswordChangeConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		sendErrorResponse(w, http.StatusBadRequest, "token и new_password обязательны")
		return
	}

	accessToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	tokens, err := h.passwordChangeService.Confirm(r.Context(), claims.UserID, req.Token, req.NewPassword, accessToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendTokensResponse(w, tokens)
}

// StartPhoneVerification godoc
// @Summary Начало привязки номера телефона
// @Description Выдаёт код подтверждения и возвращает TTL окна верификации
// @Tags Account
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.PhoneVerificationStartRequest true "Тело запроса"
// @Success 200 {object} requestresponse.PhoneVerificationStartResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/phone [post]
func (h *AccountHandler) StartPhoneVerification(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.PhoneVerificationStartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Phone == "" {
		sendErrorResponse(w, http.StatusBadRequest, "phone обязателен")
		return
	}

	ttl, err := h.phoneVerificationService.Start(r.Context(), claims.UserID, req.Phone)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := requestresponse.PhoneVerificationStartResponse{}
	resp.Response.TTL = ttl

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// ConfirmPhoneVerification godoc
// @Summary Подтверждение номера телефона
// @Description Сверяет код и привязывает номер к аккаунту
// @Tags Account
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.PhoneVerificationConfirmRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный код"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Исчерпан лимит попыток"
// @Failure 404 {object} requestresponse.ErrorResponse "Верификация не запрошена или истекла"
// @Failure 409 {object} requestresponse.ErrorResponse "Номер уже привязан к другому аккаунту"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/account/phone/confirm [post]
func (h *AccountHandler) ConfirmPhoneVerification(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.PhoneVerificationConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Code == "" {
		sendErrorResponse(w, http.StatusBadRequest, "code обязателен")
		return
	}

	if err := h.phoneVerificationService.Confirm(r.Context(), claims.UserID, req.Code); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "номер подтверждён")
}

// CancelPhoneVerification godoc
// @Summary Отмена привязки номера телефона
// @Tags Account
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/account/phone [delete]
func (h *AccountHandler) CancelPhoneVerification(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	if err := h.phoneVerificationService.Cancel(r.Context(), claims.UserID); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "верификация отменена")
}
