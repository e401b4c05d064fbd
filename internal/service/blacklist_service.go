package service

import (
	"account-server/internal/apperr"
	"account-server/internal/ports"
	"account-server/internal/security"
	"account-server/internal/util"
	"context"
	"errors"
	"time"
)

const blacklistMarker = "blacklisted"

// BlacklistService помечает ещё действующие access токены отозванными.
// Запись живёт ровно столько, сколько осталось жить самому токену:
// после естественного истечения JWT запись избыточна и вычищается TTL-ом хранилища.
type BlacklistService struct {
	cache      ports.EphemeralStore
	jwtService ports.JWTServiceInterface
}

func NewBlacklistService(cache ports.EphemeralStore, jwtService ports.JWTServiceInterface) *BlacklistService {
	return &BlacklistService{
		cache:      cache,
		jwtService: jwtService,
	}
}

// Revoke : отзывает access токен до его естественного истечения.
// Отзыв привязан к точной строке токена, а не к пользователю:
// ротация на новый access токен прошлым отзывом не затрагивается.
func (s *BlacklistService) Revoke(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return apperr.ErrTokenNotDefined
	}

	cleaned := security.StripBearer(accessToken)

	claims, err := s.jwtService.Decode(cleaned)
	if err != nil {
		return apperr.ErrInvalidToken
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		// токен уже непригоден сам по себе, отзыв не нужен
		return nil
	}

	if err := s.cache.Set(ctx, cleaned, blacklistMarker, ttl); err != nil {
		util.LogError("[BlacklistService] не удалось сохранить запись отзыва", err)
		return apperr.ErrInternal
	}

	return nil
}

// IsRevoked : проверяет, отозван ли этот access токен
func (s *BlacklistService) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	if accessToken == "" {
		return false, apperr.ErrTokenNotDefined
	}

	cleaned := security.StripBearer(accessToken)

	val, err := s.cache.Get(ctx, cleaned)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		util.LogError("[BlacklistService] ошибка проверки blacklist", err)
		return false, apperr.ErrInternal
	}

	return val == blacklistMarker, nil
}
