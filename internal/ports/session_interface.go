package ports

import (
	"account-server/internal/model"
	"context"
)

type SessionService interface {
	// Authenticate проверяет пару email/пароль и возвращает пользователя
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, userID int64) (*model.TokensPair, error)
	Refresh(ctx context.Context, userID int64, presentedRefreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, userID int64, accessToken string) error
}
