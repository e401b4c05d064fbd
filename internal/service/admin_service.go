package service

import (
	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/ports"
	"account-server/internal/util"
	"context"
	"errors"
	"fmt"
	"log"
)

// AdminService — административные операции над аккаунтами:
// блокировка и разблокировка. Блокировка делает аккаунт недоступным
// для входа и для переходов состояния до снятия.
type AdminService struct {
	db             *config.Database
	userRepository ports.UserRepository
	cache          ports.EphemeralStore
	mailer         ports.Mailer
}

func NewAdminService(
	db *config.Database,
	userRepository ports.UserRepository,
	cache ports.EphemeralStore,
	mailer ports.Mailer,
) *AdminService {
	return &AdminService{
		db:             db,
		userRepository: userRepository,
		cache:          cache,
		mailer:         mailer,
	}
}

// Block : блокирует пользователя. Администратор не может заблокировать
// ни себя, ни другого администратора (apperr.ErrForbidden). Повторная
// блокировка уже заблокированного — no-op. После коммита удаляется
// ключ активности и уходит уведомление, обе операции best-effort.
func (s *AdminService) Block(ctx context.Context, adminID, userID int64, reason string) error {
	if adminID == userID {
		return apperr.ErrForbidden
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		util.LogError("[AdminService] не удалось открыть транзакцию", err)
		return apperr.ErrInternal
	}
	defer tx.Rollback()

	user, err := s.userRepository.FindByID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrInternal
	}
	if user.Role == model.RoleAdmin {
		return apperr.ErrForbidden
	}
	if user.IsBlocked {
		return nil
	}

	if err := s.userRepository.Block(ctx, tx, userID, adminID, reason); err != nil {
		return apperr.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		util.LogError("[AdminService] ошибка коммита транзакции", err)
		return apperr.ErrInternal
	}

	if err := s.cache.Delete(ctx, ActivityKey(userID)); err != nil {
		log.Printf("[AdminService] не удалось удалить ключ активности пользователя %d: %v", userID, err)
	}

	greet := "Hello!"
	if user.Nickname.Valid {
		greet = fmt.Sprintf("Hello, %s!", user.Nickname.String)
	}
	text := greet + "\n\nYour account has been blocked by an administrator."
	html := fmt.Sprintf("<p>%s</p><p>Your account has been blocked by an administrator.</p>", greet)
	if reason != "" {
		text += "\nReason: " + reason
		html += fmt.Sprintf("<p>Reason: %s</p>", reason)
	}
	if err := s.mailer.Send(user.Email, "Account has been suspended", text, html); err != nil {
		util.LogError("[AdminService] не удалось отправить уведомление о блокировке", err)
	}

	return nil
}

// Unblock : снимает блокировку и очищает её метаданные.
// Разблокировка незаблокированного — no-op.
func (s *AdminService) Unblock(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		util.LogError("[AdminService] не удалось открыть транзакцию", err)
		return apperr.ErrInternal
	}
	defer tx.Rollback()

	user, err := s.userRepository.FindByID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrInternal
	}
	if !user.IsBlocked {
		return nil
	}

	if err := s.userRepository.Unblock(ctx, tx, userID); err != nil {
		return apperr.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		util.LogError("[AdminService] ошибка коммита транзакции", err)
		return apperr.ErrInternal
	}

	greet := "Hello!"
	if user.Nickname.Valid {
		greet = fmt.Sprintf("Hello, %s!", user.Nickname.String)
	}
	text := greet + "\n\nYour account has been reactivated by an administrator."
	html := fmt.Sprintf("<p>%s</p><p>Your account has been reactivated by an administrator.</p>", greet)
	if err := s.mailer.Send(user.Email, "Account has been reactivated", text, html); err != nil {
		util.LogError("[AdminService] не удалось отправить уведомление о разблокировке", err)
	}

	return nil
}
