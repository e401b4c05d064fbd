package repository

import (
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/util"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, email, nickname, phone_number, password, role, refresh_token,
	is_blocked, blocked_at, blocked_by, blocked_reason, last_activity_at, created_at, updated_at`

// CreateUser : сохраняет нового пользователя.
// Нарушение уникальности email/nickname/phone возвращается как apperr.ErrConflict.
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (email, nickname, password, role)
	VALUES ($1, $2, $3, $4)
	RETURNING id, email, nickname, role, created_at
	`

	createdUser := &model.User{PasswordHash: user.PasswordHash}
	err := exec.QueryRowxContext(ctx, query, user.Email, user.Nickname, user.PasswordHash, user.Role).
		Scan(&createdUser.ID, &createdUser.Email, &createdUser.Nickname, &createdUser.Role, &createdUser.CreatedAt)

	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return nil, apperr.ErrConflict
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByID : ищет пользователя по id
func (r *UserRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// FindByEmail : ищет пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", err)
	}
	return &user, nil
}

// NicknameExists : проверяет занятость nickname
func (r *UserRepository) NicknameExists(ctx context.Context, exec sqlx.ExtContext, nickname string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE nickname = $1)`
	err := sqlx.GetContext(ctx, exec, &exists, query, nickname)
	if err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки nickname", err)
	}
	return exists, nil
}

// UpdateRefreshToken : перезаписывает refresh токен пользователя, nil очищает его.
// У пользователя одновременно действует не более одного refresh токена.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, exec sqlx.ExtContext, userID int64, token *string) error {
	query := `UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, userID, token)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить refresh токен", err)
	}
	return checkAffected(result)
}

// UpdatePassword : меняет пароль пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, exec sqlx.ExtContext, userID int64, passwordHash string) error {
	query := `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}
	return checkAffected(result)
}

// UpdatePasswordAndRevokeSessions : меняет пароль и сбрасывает refresh токен одним запросом
func (r *UserRepository) UpdatePasswordAndRevokeSessions(ctx context.Context, exec sqlx.ExtContext, userID int64, passwordHash string) error {
	query := `UPDATE users SET password = $2, refresh_token = NULL, updated_at = NOW() WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить пароль", err)
	}
	return checkAffected(result)
}

// UpdateEmail : меняет email пользователя
func (r *UserRepository) UpdateEmail(ctx context.Context, exec sqlx.ExtContext, userID int64, email string) error {
	query := `UPDATE users SET email = $2, updated_at = NOW() WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, userID, email)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return util.LogError("[UserRepo] не удалось обновить email", err)
	}
	return checkAffected(result)
}

// UpdatePhone : сохраняет подтверждённый номер телефона
func (r *UserRepository) UpdatePhone(ctx context.Context, exec sqlx.ExtContext, userID int64, phone string) error {
	query := `UPDATE users SET phone_number = $2, updated_at = NOW() WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, userID, phone)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return util.LogError("[UserRepo] не удалось обновить номер телефона", err)
	}
	return checkAffected(result)
}

// UpdateRole : меняет роль пользователя
func (r *UserRepository) UpdateRole(ctx context.Context, exec sqlx.ExtContext, userID int64, role model.Role) error {
	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, userID, role)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить роль", err)
	}
	return checkAffected(result)
}

// UpdateLastActivity : обновляет last_activity_at.
// Вызывается только периодическим сбросом, не на пути запроса.
func (r *UserRepository) UpdateLastActivity(ctx context.Context, exec sqlx.ExtContext, userID int64, seenAt time.Time) error {
	query := `UPDATE users SET last_activity_at = $2 WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, userID, seenAt)
	if err != nil {
		return util.LogError("[UserRepo] не удалось обновить last_activity_at", err)
	}
	return checkAffected(result)
}

// Block : блокирует пользователя с метаданными блокировки
func (r *UserRepository) Block(ctx context.Context, exec sqlx.ExtContext, userID int64, blockedBy int64, reason string) error {
	query := `
		UPDATE users
		SET is_blocked = TRUE, blocked_at = NOW(), blocked_by = $2, blocked_reason = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := exec.ExecContext(ctx, query, userID, blockedBy, reason)
	if err != nil {
		return util.LogError("[UserRepo] не удалось заблокировать пользователя", err)
	}
	return checkAffected(result)
}

// Unblock : снимает блокировку и очищает её метаданные
func (r *UserRepository) Unblock(ctx context.Context, exec sqlx.ExtContext, userID int64) error {
	query := `
		UPDATE users
		SET is_blocked = FALSE, blocked_at = NULL, blocked_by = NULL, blocked_reason = NULL, updated_at = NOW()
		WHERE id = $1
	`
	result, err := exec.ExecContext(ctx, query, userID)
	if err != nil {
		return util.LogError("[UserRepo] не удалось разблокировать пользователя", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить результат запроса", err)
	}
	if rowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
