package ports

import (
	"account-server/internal/model"
	"account-server/internal/security"
	"context"
)

type JWTServiceInterface interface {
	GenerateTokens(userID int64) (*model.TokensPair, error)
	VerifyAccess(tokenString string) (*security.Claims, error)
	VerifyRefresh(tokenString string) (*security.Claims, error)
	// Decode разбирает токен без проверки подписи (только чтение exp)
	Decode(tokenString string) (*security.Claims, error)
}

type BlacklistServiceInterface interface {
	Revoke(ctx context.Context, accessToken string) error
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
}
