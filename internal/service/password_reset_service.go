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
	"fmt"
)

// PasswordResetService — сброс пароля по ссылке из письма.
// Подтверждение сброса отзывает все активные сессии и выдаёт новую.
type PasswordResetService struct {
	db             *config.Database
	userRepository ports.UserRepository
	sessionService ports.SessionService
	registry       *token.Registry[token.ResetPayload]
	mailer         ports.Mailer
	frontendURL    string
	tokenTTLMin    int
}

func NewPasswordResetService(
	db *config.Database,
	userRepository ports.UserRepository,
	sessionService ports.SessionService,
	registry *token.Registry[token.ResetPayload],
	mailer ports.Mailer,
	frontendURL string,
	tokenTTLSeconds int,
) *PasswordResetService {
	return &PasswordResetService{
		db:             db,
		userRepository: userRepository,
		sessionService: sessionService,
		registry:       registry,
		mailer:         mailer,
		frontendURL:    frontendURL,
		tokenTTLMin:    tokenTTLSeconds / 60,
	}
}

// Request : шлёт письмо со ссылкой на сброс. Если аккаунта с таким email
// нет — молча возвращает nil, чтобы ответ не раскрывал существование аккаунта.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	if err := validateNotServiceEmail(email, s.mailer.From()); err != nil {
		return err
	}

	user, err := s.userRepository.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return apperr.ErrInternal
	}

	tokenStr, err := s.registry.Issue(ctx, token.ResetPayload{UserID: user.ID})
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, tokenStr)
	text := fmt.Sprintf("Hi, this is an automated message, please do not reply! "+
		"You can reset your password by clicking the link below (within %d min): %s",
		s.tokenTTLMin, resetURL)
	html := fmt.Sprintf("<p>Hi, this is an automated message, please do not reply!</p>"+
		"<p>You can reset your password by clicking the link below (within %d min):</p>"+
		"<p><a href=%q>%s</a></p>", s.tokenTTLMin, resetURL, resetURL)
	if err := s.mailer.Send(email, "Password recovery", text, html); err != nil {
		return apperr.ErrInternal
	}

	return nil
}

// Confirm : устанавливает новый пароль и очищает refresh-токен пользователя
// одним UPDATE, затем выдаёт новую сессию. Токен сброса удаляется только
// после успешной записи — при сбое ссылка остаётся рабочей.
func (s *PasswordResetService) Confirm(ctx context.Context, tokenStr, newPassword string) (*model.TokensPair, error) {
	payload, err := s.registry.Consume(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		util.LogError("[PasswordResetService] не удалось создать хэш пароля", err)
		return nil, apperr.ErrInternal
	}

	if err := s.userRepository.UpdatePasswordAndRevokeSessions(ctx, s.db, payload.UserID, hash); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.ErrInternal
	}

	s.registry.Delete(ctx, tokenStr)

	return s.sessionService.Login(ctx, payload.UserID)
}
