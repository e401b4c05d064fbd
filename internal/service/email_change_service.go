package service

import (
	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/ports"
	"account-server/internal/token"
	"account-server/internal/util"
	"context"
	"errors"
	"fmt"
	"strings"
)

// EmailChangeService — смена email с подтверждением по ссылке,
// отправленной на НОВЫЙ адрес.
type EmailChangeService struct {
	db             *config.Database
	userRepository ports.UserRepository
	sessionService ports.SessionService
	registry       *token.Registry[token.EmailChangePayload]
	mailer         ports.Mailer
	frontendURL    string
	tokenTTLMin    int
}

func NewEmailChangeService(
	db *config.Database,
	userRepository ports.UserRepository,
	sessionService ports.SessionService,
	registry *token.Registry[token.EmailChangePayload],
	mailer ports.Mailer,
	frontendURL string,
	tokenTTLSeconds int,
) *EmailChangeService {
	return &EmailChangeService{
		db:             db,
		userRepository: userRepository,
		sessionService: sessionService,
		registry:       registry,
		mailer:         mailer,
		frontendURL:    frontendURL,
		tokenTTLMin:    tokenTTLSeconds / 60,
	}
}

// Request : проверяет предусловия и шлёт ссылку подтверждения на новый адрес.
// Возвращает apperr.ErrInvalidState, если новый адрес совпадает с текущим
// или является служебным, и apperr.ErrConflict, если адрес уже занят.
func (s *EmailChangeService) Request(ctx context.Context, userID int64, newEmail string) error {
	if err := validateNotServiceEmail(newEmail, s.mailer.From()); err != nil {
		return err
	}

	user, err := s.userRepository.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrInternal
	}
	if user.IsBlocked {
		return apperr.ErrInvalidState
	}
	if strings.EqualFold(user.Email, newEmail) {
		return apperr.ErrInvalidState
	}

	_, err = s.userRepository.FindByEmail(ctx, s.db, newEmail)
	switch {
	case err == nil:
		return apperr.ErrConflict
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return apperr.ErrInternal
	}

	tokenStr, err := s.registry.Issue(ctx, token.EmailChangePayload{
		UserID:   userID,
		NewEmail: newEmail,
	})
	if err != nil {
		return err
	}

	confirmURL := fmt.Sprintf("%s/confirm-email-change?token=%s", s.frontendURL, tokenStr)
	text := fmt.Sprintf("Hi, this is an automated message, please do not reply! "+
		"You can confirm changing your email address by clicking the link below (within %d min): %s",
		s.tokenTTLMin, confirmURL)
	html := fmt.Sprintf("<p>Hi, this is an automated message, please do not reply!</p>"+
		"<p>You can confirm changing your email address by clicking the link below (within %d min):</p>"+
		"<p><a href=%q>%s</a></p>", s.tokenTTLMin, confirmURL, confirmURL)
	if err := s.mailer.Send(newEmail, "Confirm email change", text, html); err != nil {
		return apperr.ErrInternal
	}

	return nil
}

// Confirm завершает смену email.
//
// Токен принадлежит конкретному пользователю: попытка подтвердить его
// из другой сессии возвращает apperr.ErrForbidden. Предусловия
// перепроверяются по свежей строке внутри транзакции — между request и
// confirm адрес могли занять. После коммита на старый адрес уходит
// уведомление (best-effort) и выдаётся новая пара токенов.
func (s *EmailChangeService) Confirm(ctx context.Context, userID int64, tokenStr string) (*model.TokensPair, error) {
	payload, err := s.registry.Consume(ctx, tokenStr)
	if err != nil {
		return nil, err
	}
	if payload.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		util.LogError("[EmailChangeService] не удалось открыть транзакцию", err)
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
	oldEmail := user.Email

	if err := s.userRepository.UpdateEmail(ctx, tx, userID, payload.NewEmail); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.ErrConflict
		}
		return nil, apperr.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		util.LogError("[EmailChangeService] ошибка коммита транзакции", err)
		return nil, apperr.ErrInternal
	}

	s.registry.Delete(ctx, tokenStr)

	text := fmt.Sprintf("Hi, this is an automated message, please do not reply! "+
		"The email address of your account has been changed to %s. "+
		"If this wasn't you, please contact support.", payload.NewEmail)
	html := fmt.Sprintf("<p>Hi, this is an automated message, please do not reply!</p>"+
		"<p>The email address of your account has been changed to <b>%s</b>.</p>"+
		"<p>If this wasn't you, please contact support.</p>", payload.NewEmail)
	if err := s.mailer.Send(oldEmail, "Email address changed", text, html); err != nil {
		util.LogError("[EmailChangeService] не удалось отправить уведомление на старый адрес", err)
	}

	return s.sessionService.Login(ctx, userID)
}
