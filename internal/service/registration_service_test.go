package service_test

import (
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/service"
	"account-server/internal/token"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRegistrationService(t *testing.T) (*service.RegistrationService, sqlmock.Sqlmock, *MockUserRepository, *MockSessionService, *memStore, *MockMailer) {
	db, mockDB := newTxDB(t)
	mockUserRepo := new(MockUserRepository)
	mockSession := new(MockSessionService)
	mockMailer := new(MockMailer)
	store := newMemStore()
	registry := token.NewRegistry[token.RegistrationPayload](store, token.PurposeRegistration, 30*time.Minute)

	svc := service.NewRegistrationService(
		db, mockUserRepo, mockSession, registry, mockMailer,
		"https://front.example.com", 1800,
	)
	return svc, mockDB, mockUserRepo, mockSession, store, mockMailer
}

// 1. Служебный адрес отправителя как email регистрации — отказ
func TestRegistrationRequest_ServiceEmail(t *testing.T) {
	svc, _, _, _, _, mockMailer := newTestRegistrationService(t)

	mockMailer.On("From").Return("noreply@example.com")

	err := svc.Request(context.Background(), "NoReply@Example.com", "pass")

	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

// 2. Существующий email: вместо регистрационного токена уходит письмо о сбросе
func TestRegistrationRequest_ExistingAccount(t *testing.T) {
	svc, _, mockUserRepo, _, store, mockMailer := newTestRegistrationService(t)
	ctx := context.Background()

	mockMailer.On("From").Return("noreply@example.com")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "user@example.com").
		Return(&model.User{ID: 1, Email: "user@example.com"}, nil)
	mockMailer.On("Send", "user@example.com", "Password recovery", mock.Anything, mock.Anything).
		Return(nil)

	err := svc.Request(ctx, "user@example.com", "pass")

	assert.NoError(t, err)
	assert.Empty(t, store.values)
	mockMailer.AssertExpectations(t)
}

// 3. Новый email: выдан токен с хэшем пароля, отправлена ссылка подтверждения
func TestRegistrationRequest_NewAccount(t *testing.T) {
	svc, _, mockUserRepo, _, store, mockMailer := newTestRegistrationService(t)
	ctx := context.Background()

	mockMailer.On("From").Return("noreply@example.com")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "new@example.com").
		Return(nil, apperr.ErrNotFound)
	mockMailer.On("Send", "new@example.com", "Confirm registration", mock.Anything, mock.Anything).
		Return(nil)

	err := svc.Request(ctx, "new@example.com", "pass")

	assert.NoError(t, err)
	assert.Len(t, store.values, 1)
	for _, raw := range store.values {
		assert.Contains(t, raw, "new@example.com")
		// открытый пароль в хранилище не попадает
		assert.NotContains(t, raw, `"pass"`)
	}
	mockMailer.AssertExpectations(t)
}

// 4. Подтверждение с неизвестным токеном — ErrNotFound
func TestRegistrationConfirm_UnknownToken(t *testing.T) {
	svc, _, _, _, _, _ := newTestRegistrationService(t)

	_, err := svc.Confirm(context.Background(), "нет-такого")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// 5. Успешное подтверждение: пользователь создан в транзакции,
// токен удалён только после коммита, выдана сессия
func TestRegistrationConfirm_Success(t *testing.T) {
	svc, mockDB, mockUserRepo, mockSession, store, mockMailer := newTestRegistrationService(t)
	ctx := context.Background()

	mockMailer.On("From").Return("noreply@example.com")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "new@example.com").
		Return(nil, apperr.ErrNotFound)
	mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, svc.Request(ctx, "new@example.com", "pass"))

	var tokenStr string
	for key := range store.values {
		tokenStr = key[len(token.PurposeRegistration):]
	}
	require.NotEmpty(t, tokenStr)

	tokens := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}

	mockDB.ExpectBegin()
	mockUserRepo.On("NicknameExists", ctx, mock.Anything, mock.Anything).Return(false, nil).Once()
	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.Anything).
		Return(&model.User{ID: 7, Email: "new@example.com"}, nil)
	mockDB.ExpectCommit()
	mockSession.On("Login", ctx, int64(7)).Return(tokens, nil)

	result, err := svc.Confirm(ctx, tokenStr)

	assert.NoError(t, err)
	assert.Equal(t, tokens, result)
	assert.Empty(t, store.values)
	assert.NoError(t, mockDB.ExpectationsWereMet())
	mockUserRepo.AssertExpectations(t)
	mockSession.AssertExpectations(t)
}

// 6. Занятые nickname перебираются внутри той же транзакции
func TestRegistrationConfirm_NicknameCollisions(t *testing.T) {
	svc, mockDB, mockUserRepo, mockSession, store, mockMailer := newTestRegistrationService(t)
	ctx := context.Background()

	mockMailer.On("From").Return("noreply@example.com")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "new@example.com").
		Return(nil, apperr.ErrNotFound)
	mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, svc.Request(ctx, "new@example.com", "pass"))

	var tokenStr string
	for key := range store.values {
		tokenStr = key[len(token.PurposeRegistration):]
	}

	mockDB.ExpectBegin()
	mockUserRepo.On("NicknameExists", ctx, mock.Anything, mock.Anything).Return(true, nil).Times(3)
	mockUserRepo.On("NicknameExists", ctx, mock.Anything, mock.Anything).Return(false, nil).Once()
	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.Anything).
		Return(&model.User{ID: 7}, nil)
	mockDB.ExpectCommit()
	mockSession.On("Login", ctx, int64(7)).
		Return(&model.TokensPair{AccessToken: "acc"}, nil)

	_, err := svc.Confirm(ctx, tokenStr)

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

// 7. Email заняли между request и confirm: конфликт, токен остаётся в хранилище
func TestRegistrationConfirm_EmailTaken(t *testing.T) {
	svc, mockDB, mockUserRepo, _, store, mockMailer := newTestRegistrationService(t)
	ctx := context.Background()

	mockMailer.On("From").Return("noreply@example.com")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "new@example.com").
		Return(nil, apperr.ErrNotFound)
	mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, svc.Request(ctx, "new@example.com", "pass"))

	var tokenStr string
	for key := range store.values {
		tokenStr = key[len(token.PurposeRegistration):]
	}

	mockDB.ExpectBegin()
	mockUserRepo.On("NicknameExists", ctx, mock.Anything, mock.Anything).Return(false, nil)
	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.Anything).
		Return(nil, apperr.ErrConflict)
	mockDB.ExpectRollback()

	_, err := svc.Confirm(ctx, tokenStr)

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Len(t, store.values, 1)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

// 8. Один токен не создаёт аккаунт дважды: после коммита токен удалён
// и повтор получает ErrNotFound, а выживший после коммита токен
// упирается в уникальность email внутри транзакции
func TestRegistrationConfirm_SingleUse(t *testing.T) {
	svc, mockDB, mockUserRepo, mockSession, store, mockMailer := newTestRegistrationService(t)
	ctx := context.Background()

	mockMailer.On("From").Return("noreply@example.com")
	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "new@example.com").
		Return(nil, apperr.ErrNotFound)
	mockMailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	require.NoError(t, svc.Request(ctx, "new@example.com", "pass"))

	var fullKey, tokenStr string
	for key := range store.values {
		fullKey = key
		tokenStr = key[len(token.PurposeRegistration):]
	}
	payload := store.values[fullKey]

	mockDB.ExpectBegin()
	mockUserRepo.On("NicknameExists", ctx, mock.Anything, mock.Anything).Return(false, nil)
	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.Anything).
		Return(&model.User{ID: 7, Email: "new@example.com"}, nil).Once()
	mockDB.ExpectCommit()
	mockSession.On("Login", ctx, int64(7)).
		Return(&model.TokensPair{AccessToken: "acc"}, nil)

	_, err := svc.Confirm(ctx, tokenStr)
	require.NoError(t, err)

	// обычный повтор: токен удалён вместе с коммитом
	_, err = svc.Confirm(ctx, tokenStr)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// сбой между коммитом и удалением: токен ещё жив,
	// но повторная вставка того же email падает на уникальности
	store.values[fullKey] = payload
	mockDB.ExpectBegin()
	mockUserRepo.On("CreateUser", ctx, mock.Anything, mock.Anything).
		Return(nil, apperr.ErrConflict).Once()
	mockDB.ExpectRollback()

	_, err = svc.Confirm(ctx, tokenStr)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
