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
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
)

// maxNicknameAttempts : жёсткий лимит попыток подбора уникального nickname
const maxNicknameAttempts = 100

// RegistrationService — регистрация по одноразовому токену:
// request кладёт {email, hash} в ephemeral-хранилище и шлёт ссылку,
// confirm создаёт пользователя в одной транзакции.
type RegistrationService struct {
	db             *config.Database
	userRepository ports.UserRepository
	sessionService ports.SessionService
	registry       *token.Registry[token.RegistrationPayload]
	mailer         ports.Mailer
	frontendURL    string
	tokenTTLMin    int
}

func NewRegistrationService(
	db *config.Database,
	userRepository ports.UserRepository,
	sessionService ports.SessionService,
	registry *token.Registry[token.RegistrationPayload],
	mailer ports.Mailer,
	frontendURL string,
	tokenTTLSeconds int,
) *RegistrationService {
	return &RegistrationService{
		db:             db,
		userRepository: userRepository,
		sessionService: sessionService,
		registry:       registry,
		mailer:         mailer,
		frontendURL:    frontendURL,
		tokenTTLMin:    tokenTTLSeconds / 60,
	}
}

// Request : начинает регистрацию. Ответ одинаков независимо от того,
// существует ли уже аккаунт с таким email — защита от перечисления аккаунтов.
// Для существующего аккаунта вместо регистрационного токена уходит
// подсказка о сбросе пароля.
func (s *RegistrationService) Request(ctx context.Context, email, password string) error {
	if err := validateNotServiceEmail(email, s.mailer.From()); err != nil {
		return err
	}

	_, err := s.userRepository.FindByEmail(ctx, s.db, email)
	switch {
	case err == nil:
		resetURL := fmt.Sprintf("%s/reset-password?email=%s", s.frontendURL, url.QueryEscape(email))
		text := fmt.Sprintf("Hi, this is an automated message, please do not reply! "+
			"It looks like there is already an account associated with this email address. "+
			"If you have forgotten your password, you can reset it by clicking the link below: %s", resetURL)
		html := fmt.Sprintf("<p>Hi, this is an automated message, please do not reply!</p>"+
			"<p>It looks like there is already an account associated with this email address.</p>"+
			"<p>If you have forgotten your password, you can reset it by clicking the link below:</p>"+
			"<p><a href=%q>%s</a></p>", resetURL, resetURL)
		if err := s.mailer.Send(email, "Password recovery", text, html); err != nil {
			return apperr.ErrInternal
		}

	case errors.Is(err, apperr.ErrNotFound):
		hash, err := security.HashPassword(password)
		if err != nil {
			util.LogError("[RegistrationService] не удалось создать хэш пароля", err)
			return apperr.ErrInternal
		}

		tokenStr, err := s.registry.Issue(ctx, token.RegistrationPayload{
			Email:        email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}

		confirmURL := fmt.Sprintf("%s/confirm-registration?token=%s", s.frontendURL, tokenStr)
		text := fmt.Sprintf("Hi, this is an automated message, please do not reply! "+
			"You can confirm your registration by clicking the link below (within %d min): %s",
			s.tokenTTLMin, confirmURL)
		html := fmt.Sprintf("<p>Hi, this is an automated message, please do not reply!</p>"+
			"<p>You can confirm your registration by clicking the link below (within %d min):</p>"+
			"<p><a href=%q>%s</a></p>", s.tokenTTLMin, confirmURL, confirmURL)
		if err := s.mailer.Send(email, "Confirm registration", text, html); err != nil {
			return apperr.ErrInternal
		}

	default:
		return apperr.ErrInternal
	}

	return nil
}

// Confirm завершает регистрацию по одноразовому токену.
//
// Nickname подбирается ограниченным числом попыток с проверкой занятости
// внутри той же транзакции, в которой создаётся пользователь. Токен
// удаляется только после коммита: при сбое транзакции он остаётся
// валидным и пользователь может повторить подтверждение той же ссылкой.
//
// Возвращает:
//   - model.TokensPair — новая сессия для созданного пользователя
//   - apperr.ErrNotFound, если токен не найден, просрочен или повреждён
//   - apperr.ErrConflict, если email заняли между request и confirm
//   - apperr.ErrInternal, если исчерпан лимит попыток подбора nickname
func (s *RegistrationService) Confirm(ctx context.Context, tokenStr string) (*model.TokensPair, error) {
	payload, err := s.registry.Consume(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	if err := validateNotServiceEmail(payload.Email, s.mailer.From()); err != nil {
		return nil, apperr.ErrNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		util.LogError("[RegistrationService] не удалось открыть транзакцию", err)
		return nil, apperr.ErrInternal
	}
	defer tx.Rollback()

	var nickname string
	for attempt := 0; ; attempt++ {
		if attempt >= maxNicknameAttempts {
			log.Printf("[RegistrationService] не удалось подобрать уникальный nickname за %d попыток", maxNicknameAttempts)
			return nil, apperr.ErrInternal
		}
		nickname = util.GenerateNickname()
		exists, err := s.userRepository.NicknameExists(ctx, tx, nickname)
		if err != nil {
			return nil, apperr.ErrInternal
		}
		if !exists {
			break
		}
	}

	created, err := s.userRepository.CreateUser(ctx, tx, &model.User{
		Email:        payload.Email,
		Nickname:     sql.NullString{String: nickname, Valid: true},
		PasswordHash: payload.PasswordHash,
		Role:         model.RoleUser,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.ErrConflict
		}
		return nil, apperr.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		util.LogError("[RegistrationService] ошибка коммита транзакции", err)
		return nil, apperr.ErrInternal
	}

	s.registry.Delete(ctx, tokenStr)

	return s.sessionService.Login(ctx, created.ID)
}

// validateNotServiceEmail : запрещает служебный адрес отправителя как целевой email
func validateNotServiceEmail(email, serviceEmail string) error {
	if serviceEmail != "" && strings.EqualFold(email, serviceEmail) {
		return apperr.ErrInvalidState
	}
	return nil
}
