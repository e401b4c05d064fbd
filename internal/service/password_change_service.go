package service

import (
	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/ports"
	"account-server/internal/security"
	"account-server/internal/token"
	"account-server/internal/util"
	"context"
	"errors"
)

// PasswordChangeService — смена пароля из активной сессии. В отличие от
// сброса, токен не отправляется почтой: request проверяет старый пароль
// и возвращает токен напрямую, confirm выполняет замену.
type PasswordChangeService struct {
	db             *config.Database
	userRepository ports.UserRepository
	sessionService ports.SessionService
	blacklist      ports.BlacklistServiceInterface
	registry       *token.Registry[token.PasswordChangePayload]
}

func NewPasswordChangeService(
	db *config.Database,
	userRepository ports.UserRepository,
	sessionService ports.SessionService,
	blacklist ports.BlacklistServiceInterface,
	registry *token.Registry[token.PasswordChangePayload],
) *PasswordChangeService {
	return &PasswordChangeService{
		db:             db,
		userRepository: userRepository,
		sessionService: sessionService,
		blacklist:      blacklist,
		registry:       registry,
	}
}

// Request : сверяет старый пароль и выдаёт одноразовый токен смены.
// Неверный старый пароль — apperr.ErrInvalidState.
func (s *PasswordChangeService) Request(ctx context.Context, userID int64, oldPassword string) (string, error) {
	user, err := s.userRepository.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrNotFound
		}
		return "", apperr.ErrInternal
	}
	if user.IsBlocked {
		return "", apperr.ErrInvalidState
	}
	if !security.CheckPassword(oldPassword, user.PasswordHash) {
		return "", apperr.ErrInvalidState
	}

	return s.registry.Issue(ctx, token.PasswordChangePayload{UserID: userID})
}

// Confirm : заменяет пароль, отзывает все сессии пользователя, гасит
// текущий access-токен через блэклист и выдаёт новую пару токенов.
// Новый пароль, совпадающий со старым, отклоняется как apperr.ErrInvalidState.
func (s *PasswordChangeService) Confirm(ctx context.Context, userID int64, tokenStr, newPassword, accessToken string) (*model.TokensPair, error) {
	payload, err := s.registry.Consume(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if payload.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		util.LogError("[PasswordChangeService] не удалось открыть транзакцию", err)
		return nil, apperr.ErrInternal
	}
	defer tx.Rollback()

	user, err := s.userRepository.FindByID(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.ErrInternal
	}
	if user.IsBlocked {
		return nil, apperr.ErrInvalidState
	}
	if security.CheckPassword(newPassword, user.PasswordHash) {
		return nil, apperr.ErrInvalidState
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		util.LogError("[PasswordChangeService] не удалось создать хэш пароля", err)
		return nil, apperr.ErrInternal
	}

	if err := s.userRepository.UpdatePasswordAndRevokeSessions(ctx, tx, userID, hash); err != nil {
		return nil, apperr.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		util.LogError("[PasswordChangeService] ошибка коммита транзакции", err)
		return nil, apperr.ErrInternal
	}

	s.registry.Delete(ctx, tokenStr)

	if accessToken != "" {
		if err := s.blacklist.Revoke(ctx, accessToken); err != nil {
			util.LogError("[PasswordChangeService] не удалось отозвать access-токен", err)
		}
	}

	return s.sessionService.Login(ctx, userID)
}
