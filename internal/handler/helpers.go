package handler

import (
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/model/requestresponse"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// sendErrorResponse отправляет ответ об ошибке JSON с указанным кодом статуса и сообщением
func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		Error: requestresponse.ErrorDetail{
			Code: statusCode,
			Text: message,
		},
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректный JSON")
		return err
	}
	return nil
}

// handleServiceError сопоставляет вид ошибки сервиса с HTTP-статусом
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrTokenNotDefined),
		errors.Is(err, apperr.ErrInvalidToken):
		sendErrorResponse(w, http.StatusUnauthorized, apperr.ErrInvalidToken.Error())
	case errors.Is(err, apperr.ErrNotFound):
		sendErrorResponse(w, http.StatusNotFound, apperr.ErrNotFound.Error())
	case errors.Is(err, apperr.ErrConflict):
		sendErrorResponse(w, http.StatusConflict, apperr.ErrConflict.Error())
	case errors.Is(err, apperr.ErrForbidden):
		sendErrorResponse(w, http.StatusForbidden, apperr.ErrForbidden.Error())
	case errors.Is(err, apperr.ErrInvalidState):
		sendErrorResponse(w, http.StatusBadRequest, apperr.ErrInvalidState.Error())
	default:
		log.Println(err)
		sendErrorResponse(w, http.StatusInternalServerError, apperr.ErrInternal.Error())
	}
}

func sendTokensResponse(w http.ResponseWriter, tokens *model.TokensPair) {
	resp := requestresponse.TokensResponse{}
	resp.Response.AccessToken = tokens.AccessToken
	resp.Response.RefreshToken = tokens.RefreshToken
	resp.Response.AccessTokenExpires = tokens.AccessTokenExpires
	resp.Response.RefreshTokenExpires = tokens.RefreshTokenExpires
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func sendMessage(w http.ResponseWriter, message string) {
	resp := requestresponse.MessageResponse{}
	resp.Response.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
