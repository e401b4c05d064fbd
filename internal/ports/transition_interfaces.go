package ports

import (
	"account-server/internal/model"
	"context"
)

// Сервисы переходов состояния аккаунта: request выдаёт одноразовый токен,
// confirm потребляет его и выполняет durable-мутацию в одной транзакции.

type RegistrationService interface {
	Request(ctx context.Context, email, password string) error
	Confirm(ctx context.Context, token string) (*model.TokensPair, error)
}

type PasswordResetService interface {
	Request(ctx context.Context, email string) error
	Confirm(ctx context.Context, token, newPassword string) (*model.TokensPair, error)
}

type EmailChangeService interface {
	Request(ctx context.Context, userID int64, newEmail string) error
	Confirm(ctx context.Context, userID int64, token string) (*model.TokensPair, error)
}

type PasswordChangeService interface {
	Request(ctx context.Context, userID int64, oldPassword string) (string, error)
	Confirm(ctx context.Context, userID int64, token, newPassword, accessToken string) (*model.TokensPair, error)
}

type AdminTransferService interface {
	Request(ctx context.Context, adminID, targetID int64) error
	Confirm(ctx context.Context, currentUserID int64, token string) (*model.TokensPair, error)
}

type PhoneVerificationService interface {
	Start(ctx context.Context, userID int64, phone string) (int, error)
	Confirm(ctx context.Context, userID int64, code string) error
	Cancel(ctx context.Context, userID int64) error
}
