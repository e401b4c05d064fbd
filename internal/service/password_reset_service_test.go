package service_test

import (
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/security"
	"account-server/internal/service"
	"account-server/internal/token"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestResetService(t *testing.T) (*service.PasswordResetService, *MockUserRepository, *MockSessionService, *memStore, *MockMailer) {
	db, _ := newTxDB(t)
	mockUserRepo := new(MockUserRepository)
	mockSession := new(MockSessionService)
	mockMailer := new(MockMailer)
	store := newMemStore()
	registry := token.NewRegistry[token.ResetPayload](store, token.PurposeReset, 15*time.Minute)

	svc := service.NewPasswordResetService(
		db, mockUserRepo, mockSession, registry, mockMailer,
		"https://front.example.com", 900,
	)
	return svc, mockUserRepo, mockSession, store, mockMailer
}

// 1. Неизвестный email: молчаливый успех, токен не выдан
func TestResetRequest_UnknownEmail(t *testing.T) {
	svc, mockUserRepo, _, store, mockMailer := newTestResetService(t)
	ctx := context.Background()

	mockMailer.On("From").Return("noreply@example.com")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "ghost@example.com").
		Return(nil, apperr.ErrNotFound)

	err := svc.Request(ctx, "ghost@example.com")

	assert.NoError(t, err)
	assert.Empty(t, store.values)
	mockMailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 2. Существующий email: токен выдан, письмо ушло
func TestResetRequest_Success(t *testing.T) {
	svc, mockUserRepo, _, store, mockMailer := newTestResetService(t)
	ctx := context.Background()

	mockMailer.On("From").Return("noreply@example.com")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "user@example.com").
		Return(&model.User{ID: 5, Email: "user@example.com"}, nil)
	mockMailer.On("Send", "user@example.com", "Password recovery", mock.Anything, mock.Anything).
		Return(nil)

	err := svc.Request(ctx, "user@example.com")

	assert.NoError(t, err)
	assert.Len(t, store.values, 1)
	mockMailer.AssertExpectations(t)
}

// 3. Просроченный или неизвестный токен — ErrNotFound
func TestResetConfirm_UnknownToken(t *testing.T) {
	svc, _, _, _, _ := newTestResetService(t)

	_, err := svc.Confirm(context.Background(), "нет-такого", "newpass")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// 4. Успешный сброс: пароль заменён, сессии отозваны одним UPDATE,
// токен удалён после записи, выдана новая сессия
func TestResetConfirm_Success(t *testing.T) {
	svc, mockUserRepo, mockSession, store, _ := newTestResetService(t)
	ctx := context.Background()

	raw, err := json.Marshal(token.ResetPayload{UserID: 5})
	require.NoError(t, err)
	store.values[token.PurposeReset+"tok"] = string(raw)

	tokens := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}

	mockUserRepo.On("UpdatePasswordAndRevokeSessions", ctx, mock.Anything, int64(5), mock.MatchedBy(func(hash string) bool {
		return security.CheckPassword("newpass", hash)
	})).Return(nil)
	mockSession.On("Login", ctx, int64(5)).Return(tokens, nil)

	result, err := svc.Confirm(ctx, "tok", "newpass")

	assert.NoError(t, err)
	assert.Equal(t, tokens, result)
	assert.Empty(t, store.values)
	mockUserRepo.AssertExpectations(t)
	mockSession.AssertExpectations(t)
}

// 5. Пользователь удалён между request и confirm: ErrNotFound, токен остаётся
func TestResetConfirm_UserGone(t *testing.T) {
	svc, mockUserRepo, _, store, _ := newTestResetService(t)
	ctx := context.Background()

	raw, err := json.Marshal(token.ResetPayload{UserID: 5})
	require.NoError(t, err)
	store.values[token.PurposeReset+"tok"] = string(raw)

	mockUserRepo.On("UpdatePasswordAndRevokeSessions", ctx, mock.Anything, int64(5), mock.Anything).
		Return(apperr.ErrNotFound)

	_, err = svc.Confirm(ctx, "tok", "newpass")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Len(t, store.values, 1)
}
