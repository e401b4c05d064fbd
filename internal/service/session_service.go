package service

import (
	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/model"
	"account-server/internal/ports"
	"account-server/internal/security"
	"account-server/internal/util"
	"context"
	"errors"
)

// SessionService управляет жизненным циклом сессии:
// выдача пары токенов, ротация refresh токена, выход.
type SessionService struct {
	db             *config.Database
	userRepository ports.UserRepository
	jwtService     ports.JWTServiceInterface
	blacklist      ports.BlacklistServiceInterface
}

func NewSessionService(
	db *config.Database,
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	blacklist ports.BlacklistServiceInterface,
) *SessionService {
	return &SessionService{
		db:             db,
		userRepository: userRepository,
		jwtService:     jwtService,
		blacklist:      blacklist,
	}
}

// Authenticate : проверяет email и пароль, возвращает пользователя.
// Несуществующий email и неверный пароль наружу не различаются.
func (s *SessionService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepository.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.ErrInternal
	}

	if user.IsBlocked {
		return nil, apperr.ErrInvalidState
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, apperr.ErrNotFound
	}

	return user, nil
}

// Login : выдаёт пару токенов и сохраняет refresh токен на строке пользователя.
// Прежнее значение перезаписывается — у пользователя не более одного живого refresh токена.
func (s *SessionService) Login(ctx context.Context, userID int64) (*model.TokensPair, error) {
	tokens, err := s.jwtService.GenerateTokens(userID)
	if err != nil {
		util.LogError("[SessionService] ошибка генерации токенов", err)
		return nil, apperr.ErrInternal
	}

	if err := s.userRepository.UpdateRefreshToken(ctx, s.db, userID, &tokens.RefreshToken); err != nil {
		util.LogError("[SessionService] не удалось сохранить refresh токен", err)
		return nil, apperr.ErrInternal
	}

	return tokens, nil
}

// Refresh обновляет пару токенов по предъявленному refresh токену.
//
// Токен должен пройти проверку подписи И текстуально совпасть со значением,
// сохранённым на строке пользователя: это отсекает refresh токены, выданные
// до смены пароля или административного сброса. При совпадении происходит
// ротация — старый токен немедленно перестаёт совпадать с сохранённым значением.
//
// Возвращает:
//   - model.TokensPair с новой парой токенов
//   - apperr.ErrInvalidToken при неверной подписи или несовпадении
func (s *SessionService) Refresh(ctx context.Context, userID int64, presentedRefreshToken string) (*model.TokensPair, error) {
	claims, err := s.jwtService.VerifyRefresh(presentedRefreshToken)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}
	if claims.UserID != userID {
		return nil, apperr.ErrInvalidToken
	}

	user, err := s.userRepository.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, apperr.ErrInternal
	}

	if !user.RefreshToken.Valid || user.RefreshToken.String != presentedRefreshToken {
		return nil, apperr.ErrInvalidToken
	}

	return s.Login(ctx, userID)
}

// Logout : сбрасывает refresh токен и отзывает предъявленный access токен.
// Два побочных эффекта независимы, атомарность между ними не требуется:
// устаревший refresh токен сам по себе не аутентифицирует, а не отозванный
// access токен живёт только до своего короткого естественного истечения.
func (s *SessionService) Logout(ctx context.Context, userID int64, accessToken string) error {
	if accessToken == "" {
		return apperr.ErrTokenNotDefined
	}

	if err := s.userRepository.UpdateRefreshToken(ctx, s.db, userID, nil); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		util.LogError("[SessionService] не удалось сбросить refresh токен", err)
		return apperr.ErrInternal
	}

	if err := s.blacklist.Revoke(ctx, accessToken); err != nil {
		return err
	}

	return nil
}
