package ports

import (
	"account-server/internal/model"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error)
	NicknameExists(ctx context.Context, exec sqlx.ExtContext, nickname string) (bool, error)
	// UpdateRefreshToken перезаписывает текущий refresh токен пользователя; nil очищает его
	UpdateRefreshToken(ctx context.Context, exec sqlx.ExtContext, userID int64, token *string) error
	UpdatePassword(ctx context.Context, exec sqlx.ExtContext, userID int64, passwordHash string) error
	// UpdatePasswordAndRevokeSessions меняет пароль и сбрасывает refresh токен одним запросом
	UpdatePasswordAndRevokeSessions(ctx context.Context, exec sqlx.ExtContext, userID int64, passwordHash string) error
	UpdateEmail(ctx context.Context, exec sqlx.ExtContext, userID int64, email string) error
	UpdatePhone(ctx context.Context, exec sqlx.ExtContext, userID int64, phone string) error
	UpdateRole(ctx context.Context, exec sqlx.ExtContext, userID int64, role model.Role) error
	UpdateLastActivity(ctx context.Context, exec sqlx.ExtContext, userID int64, seenAt time.Time) error
	Block(ctx context.Context, exec sqlx.ExtContext, userID int64, blockedBy int64, reason string) error
	Unblock(ctx context.Context, exec sqlx.ExtContext, userID int64) error
}
