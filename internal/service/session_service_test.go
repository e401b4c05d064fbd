package service_test

import (
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/security"
	"account-server/internal/service"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestSessionService(t *testing.T) (*service.SessionService, *MockUserRepository, *MockJWTService, *MockBlacklist) {
	db, _ := newTxDB(t)
	mockUserRepo := new(MockUserRepository)
	mockJWT := new(MockJWTService)
	mockBlacklist := new(MockBlacklist)

	svc := service.NewSessionService(db, mockUserRepo, mockJWT, mockBlacklist)
	return svc, mockUserRepo, mockJWT, mockBlacklist
}

// 1. Несуществующий email и неверный пароль не различаются
func TestAuthenticate_UserNotFound(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "ghost@example.com").
		Return(nil, apperr.ErrNotFound)

	_, err := svc.Authenticate(ctx, "ghost@example.com", "pass")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	mockUserRepo.AssertExpectations(t)
}

// 2. Неверный пароль — та же ошибка
func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	hash, _ := security.HashPassword("goodpass")
	user := &model.User{ID: 1, Email: "user@example.com", PasswordHash: hash}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "user@example.com").
		Return(user, nil)

	_, err := svc.Authenticate(ctx, "user@example.com", "badpass")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	mockUserRepo.AssertExpectations(t)
}

// 3. Заблокированный пользователь не аутентифицируется
func TestAuthenticate_BlockedUser(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	hash, _ := security.HashPassword("goodpass")
	user := &model.User{ID: 1, PasswordHash: hash, IsBlocked: true}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "user@example.com").
		Return(user, nil)

	_, err := svc.Authenticate(ctx, "user@example.com", "goodpass")

	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

// 4. Успешная аутентификация
func TestAuthenticate_Success(t *testing.T) {
	svc, mockUserRepo, _, _ := newTestSessionService(t)
	ctx := context.Background()

	hash, _ := security.HashPassword("goodpass")
	user := &model.User{ID: 1, Email: "user@example.com", PasswordHash: hash}

	mockUserRepo.On("FindByEmail", ctx, mock.Anything, "user@example.com").
		Return(user, nil)

	got, err := svc.Authenticate(ctx, "user@example.com", "goodpass")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

// 5. Login сохраняет свежий refresh токен на строке пользователя
func TestLogin_StoresRefreshToken(t *testing.T) {
	svc, mockUserRepo, mockJWT, _ := newTestSessionService(t)
	ctx := context.Background()

	tokens := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}

	mockJWT.On("GenerateTokens", int64(1)).Return(tokens, nil)
	mockUserRepo.On("UpdateRefreshToken", ctx, mock.Anything, int64(1), &tokens.RefreshToken).
		Return(nil)

	result, err := svc.Login(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, tokens, result)
	mockJWT.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

// 6. Ошибка генерации токенов — ErrInternal
func TestLogin_GenerateTokensError(t *testing.T) {
	svc, _, mockJWT, _ := newTestSessionService(t)

	mockJWT.On("GenerateTokens", int64(1)).Return(nil, errors.New("ошибка подписи"))

	_, err := svc.Login(context.Background(), 1)

	assert.ErrorIs(t, err, apperr.ErrInternal)
}

// 7. Refresh с невалидной подписью — ErrInvalidToken
func TestRefresh_BadSignature(t *testing.T) {
	svc, _, mockJWT, _ := newTestSessionService(t)

	mockJWT.On("VerifyRefresh", "badtoken").Return(nil, apperr.ErrInvalidToken)

	_, err := svc.Refresh(context.Background(), 1, "badtoken")

	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

// 8. Refresh чужого пользователя — ErrInvalidToken
func TestRefresh_UserMismatch(t *testing.T) {
	svc, _, mockJWT, _ := newTestSessionService(t)

	mockJWT.On("VerifyRefresh", "token").Return(&security.Claims{UserID: 2}, nil)

	_, err := svc.Refresh(context.Background(), 1, "token")

	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

// 9. Предъявленный токен не совпадает с сохранённым — устаревший после ротации
func TestRefresh_StaleToken(t *testing.T) {
	svc, mockUserRepo, mockJWT, _ := newTestSessionService(t)
	ctx := context.Background()

	user := &model.User{ID: 1, RefreshToken: sql.NullString{String: "current", Valid: true}}

	mockJWT.On("VerifyRefresh", "stale").Return(&security.Claims{UserID: 1}, nil)
	mockUserRepo.On("FindByID", ctx, mock.Anything, int64(1)).Return(user, nil)

	_, err := svc.Refresh(ctx, 1, "stale")

	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

// 10. После logout сохранённого refresh токена нет — Refresh отказывает
func TestRefresh_NoStoredToken(t *testing.T) {
	svc, mockUserRepo, mockJWT, _ := newTestSessionService(t)
	ctx := context.Background()

	user := &model.User{ID: 1}

	mockJWT.On("VerifyRefresh", "token").Return(&security.Claims{UserID: 1}, nil)
	mockUserRepo.On("FindByID", ctx, mock.Anything, int64(1)).Return(user, nil)

	_, err := svc.Refresh(ctx, 1, "token")

	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

// 11. Успешный Refresh выполняет ротацию через Login
func TestRefresh_Success(t *testing.T) {
	svc, mockUserRepo, mockJWT, _ := newTestSessionService(t)
	ctx := context.Background()

	user := &model.User{ID: 1, RefreshToken: sql.NullString{String: "current", Valid: true}}
	newTokens := &model.TokensPair{AccessToken: "acc2", RefreshToken: "ref2"}

	mockJWT.On("VerifyRefresh", "current").Return(&security.Claims{UserID: 1}, nil)
	mockUserRepo.On("FindByID", ctx, mock.Anything, int64(1)).Return(user, nil)
	mockJWT.On("GenerateTokens", int64(1)).Return(newTokens, nil)
	mockUserRepo.On("UpdateRefreshToken", ctx, mock.Anything, int64(1), &newTokens.RefreshToken).
		Return(nil)

	result, err := svc.Refresh(ctx, 1, "current")

	assert.NoError(t, err)
	assert.Equal(t, newTokens, result)
	mockUserRepo.AssertExpectations(t)
	mockJWT.AssertExpectations(t)
}

// 12. Logout без токена — ErrTokenNotDefined
func TestLogout_EmptyToken(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)

	err := svc.Logout(context.Background(), 1, "")

	assert.ErrorIs(t, err, apperr.ErrTokenNotDefined)
}

// 13. Logout сбрасывает refresh токен и отзывает access токен
func TestLogout_Success(t *testing.T) {
	svc, mockUserRepo, _, mockBlacklist := newTestSessionService(t)
	ctx := context.Background()

	mockUserRepo.On("UpdateRefreshToken", ctx, mock.Anything, int64(1), (*string)(nil)).
		Return(nil)
	mockBlacklist.On("Revoke", ctx, "access").Return(nil)

	err := svc.Logout(ctx, 1, "access")

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
	mockBlacklist.AssertExpectations(t)
}

// 14. Повторный logout с тем же access токеном идемпотентен
func TestLogout_Idempotent(t *testing.T) {
	svc, mockUserRepo, _, mockBlacklist := newTestSessionService(t)
	ctx := context.Background()

	mockUserRepo.On("UpdateRefreshToken", ctx, mock.Anything, int64(1), (*string)(nil)).
		Return(nil).Twice()
	mockBlacklist.On("Revoke", ctx, "access").Return(nil).Twice()

	assert.NoError(t, svc.Logout(ctx, 1, "access"))
	assert.NoError(t, svc.Logout(ctx, 1, "access"))
	mockUserRepo.AssertExpectations(t)
}
