package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type contextKey string

const (
	UserContextKey contextKey = "user"
)

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}

// JWTService подписывает и проверяет access/refresh токены.
// Для каждого назначения используется свой секрет и свой срок жизни.
type JWTService struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewJWTService : создаёт сервис подписи токенов.
// Отсутствующий секрет или некорректный TTL — фатальная ошибка конфигурации,
// сервис с такими значениями не создаётся.
func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("[JWTService] не заданы секреты подписи")
	}

	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("[JWTService] ошибка парсинга access_token_ttl: %w", err)
	}
	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("[JWTService] ошибка парсинга refresh_token_ttl: %w", err)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("[JWTService] TTL токенов должны быть положительными")
	}

	return &JWTService{
		accessSecret:    []byte(cfg.AccessSecret),
		refreshSecret:   []byte(cfg.RefreshSecret),
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}, nil
}

const issuer = "account-server"

func (service *JWTService) sign(userID int64, secret []byte, ttl time.Duration) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := jwtToken.SignedString(secret)
	if err != nil {
		return "", 0, fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return signed, expiresAt.Unix(), nil
}

// GenerateTokens : выдаёт пару access/refresh токенов для пользователя
func (service *JWTService) GenerateTokens(userID int64) (*model.TokensPair, error) {
	accessToken, accessExpires, err := service.sign(userID, service.accessSecret, service.accessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("[JWTService] ошибка генерации access токена: %w", err)
	}

	refreshToken, refreshExpires, err := service.sign(userID, service.refreshSecret, service.refreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("[JWTService] ошибка генерации refresh токена: %w", err)
	}

	return &model.TokensPair{
		AccessToken:         accessToken,
		RefreshToken:        refreshToken,
		AccessTokenExpires:  accessExpires,
		RefreshTokenExpires: refreshExpires,
	}, nil
}

func (service *JWTService) verify(jwtTokenStr string, secret []byte) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return secret, nil
	})

	// Просроченный и повреждённый токены наружу не различаются
	if err != nil || !jwtToken.Valid {
		return nil, apperr.ErrInvalidToken
	}

	return claims, nil
}

// VerifyAccess : проверяет подпись и срок действия access токена
func (service *JWTService) VerifyAccess(jwtTokenStr string) (*Claims, error) {
	return service.verify(jwtTokenStr, service.accessSecret)
}

// VerifyRefresh : проверяет подпись и срок действия refresh токена
func (service *JWTService) VerifyRefresh(jwtTokenStr string) (*Claims, error) {
	return service.verify(jwtTokenStr, service.refreshSecret)
}

// Decode : разбирает токен без проверки подписи.
// Используется только для чтения exp при учёте blacklist.
func (service *JWTService) Decode(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(jwtTokenStr, claims)
	if err != nil || claims.ExpiresAt == nil {
		return nil, apperr.ErrInvalidToken
	}
	return claims, nil
}

// StripBearer : убирает префикс схемы Bearer из заголовка Authorization
func StripBearer(token string) string {
	if strings.HasPrefix(token, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	}
	return strings.TrimSpace(token)
}
