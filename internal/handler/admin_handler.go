package handler

import (
	"account-server/internal/model/requestresponse"
	"account-server/internal/ports"
	"account-server/internal/security"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// AdminHandler обслуживает административные операции:
// блокировку, разблокировку и передачу прав администратора.
type AdminHandler struct {
	adminService         ports.AdminService
	adminTransferService ports.AdminTransferService
}

func NewAdminHandler(
	adminService ports.AdminService,
	adminTransferService ports.AdminTransferService,
) *AdminHandler {
	return &AdminHandler{
		adminService:         adminService,
		adminTransferService: adminTransferService,
	}
}

func userIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// BlockUser godoc
// @Summary Блокировка пользователя
// @Description Блокирует аккаунт и фиксирует кто, когда и за что. Повторная блокировка — no-op
// @Tags Admin
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param id path int true "ID пользователя"
// @Param body body requestresponse.BlockUserRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Попытка заблокировать себя или администратора"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/admin/users/{id}/block [post]
func (h *AdminHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	userID, err := userIDFromURL(r)
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректный ID пользователя")
		return
	}

	var req requestresponse.BlockUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.adminService.Block(r.Context(), claims.UserID, userID, req.Reason); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "пользователь заблокирован")
}

// UnblockUser godoc
// @Summary Разблокировка пользователя
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param id path int true "ID пользователя"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/admin/users/{id}/block [delete]
func (h *AdminHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, err := userIDFromURL(r)
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректный ID пользователя")
		return
	}

	if err := h.adminService.Unblock(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "пользователь разблокирован")
}

// RequestAdminTransfer godoc
// @Summary Запрос передачи прав администратора
// @Description Шлёт получателю ссылку подтверждения передачи прав
// @Tags Admin
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.AdminTransferRequest true "Тело запроса"
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Получатель уже администратор или заблокирован"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Инициатор не администратор или передаёт права себе"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/admin/transfer [post]
func (h *AdminHandler) RequestAdminTransfer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	var req requestresponse.AdminTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.TargetID == 0 {
		sendErrorResponse(w, http.StatusBadRequest, "target_id обязателен")
		return
	}

	if err := h.adminTransferService.Request(r.Context(), claims.UserID, req.TargetID); err != nil {
		handleServiceError(w, err)
		return
	}

	sendMessage(w, "письмо отправлено")
}

// ConfirmAdminTransfer godoc
// @Summary Подтверждение передачи прав администратора
// @Description Выполняется получателем прав: меняет обе роли атомарно и выдаёт новую пару токенов
// @Tags Admin
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Param body body requestresponse.ConfirmTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Предусловия изменились между запросом и подтверждением"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Токен адресован другому пользователю"
// @Failure 404 {object} requestresponse.ErrorResponse "Токен не найден или просрочен"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/admin/transfer/confirm [post]
func (h *AdminHandler) ConfirmAdminTransfer(w http.ResponseWriter, r *http.Request) {
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

	tokens, err := h.adminTransferService.Confirm(r.Context(), claims.UserID, req.Token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	sendTokensResponse(w, tokens)
}
