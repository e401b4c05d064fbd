package service

import (
	"account-server/config"
	"account-server/internal/apperr"
	"account-server/internal/ports"
	"account-server/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

type phoneVerificationData struct {
	Phone    string `json:"phone"`
	Attempts int    `json:"attempts"`
}

func phoneDataKey(userID int64) string {
	return fmt.Sprintf("phone:verify:data:%d", userID)
}

func phoneCodeKey(userID int64) string {
	return fmt.Sprintf("phone:verify:code:%d", userID)
}

// PhoneVerificationService — привязка номера телефона по коду.
// Код и данные попытки живут в ephemeral-хранилище под общим TTL;
// счётчик неудачных попыток переписывается под ОСТАВШИЙСЯ TTL,
// чтобы неверный код не продлевал окно верификации.
type PhoneVerificationService struct {
	db             *config.Database
	userRepository ports.UserRepository
	cache          ports.EphemeralStore
	ttl            time.Duration
	codeLength     int
	maxAttempts    int
}

func NewPhoneVerificationService(
	db *config.Database,
	userRepository ports.UserRepository,
	cache ports.EphemeralStore,
	cfg *config.PhoneVerificationConfig,
) *PhoneVerificationService {
	return &PhoneVerificationService{
		db:             db,
		userRepository: userRepository,
		cache:          cache,
		ttl:            time.Duration(cfg.TTL) * time.Second,
		codeLength:     cfg.CodeLength,
		maxAttempts:    cfg.MaxAttempts,
	}
}

// Start : начинает верификацию номера и возвращает TTL окна в секундах.
// Повторный вызов перезаписывает предыдущую попытку новым кодом.
func (s *PhoneVerificationService) Start(ctx context.Context, userID int64, phone string) (int, error) {
	data := phoneVerificationData{
		Phone:    phone,
		Attempts: 0,
	}
	raw, err := json.Marshal(data)
	if err != nil {
		util.LogError("[PhoneVerificationService] не удалось сериализовать данные верификации", err)
		return 0, apperr.ErrInternal
	}

	code := util.GenerateVerificationCode(s.codeLength)

	if err := s.cache.Set(ctx, phoneDataKey(userID), string(raw), s.ttl); err != nil {
		return 0, apperr.ErrInternal
	}
	if err := s.cache.Set(ctx, phoneCodeKey(userID), code, s.ttl); err != nil {
		return 0, apperr.ErrInternal
	}

	// доставка кода SMS-провайдером происходит за пределами сервиса
	return int(s.ttl / time.Second), nil
}

// Confirm : сверяет код и при успехе записывает номер в durable-хранилище.
//
// Возвращает:
//   - apperr.ErrNotFound — верификация не запрошена или истекла
//   - apperr.ErrForbidden — исчерпан лимит попыток, попытка аннулирована
//   - apperr.ErrInvalidState — неверный код, счётчик попыток увеличен
//   - apperr.ErrConflict — номер уже привязан к другому аккаунту
func (s *PhoneVerificationService) Confirm(ctx context.Context, userID int64, code string) error {
	rawData, err := s.cache.Get(ctx, phoneDataKey(userID))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrInternal
	}
	realCode, err := s.cache.Get(ctx, phoneCodeKey(userID))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrInternal
	}

	var data phoneVerificationData
	if err := json.Unmarshal([]byte(rawData), &data); err != nil {
		log.Printf("[PhoneVerificationService] повреждённые данные верификации пользователя %d: %v", userID, err)
		s.cleanup(ctx, userID)
		return apperr.ErrNotFound
	}

	// оставшееся окно читается из хранилища: неверный код переписывает
	// счётчик под этот же остаток и не продлевает верификацию
	ttlLeft, err := s.cache.TTL(ctx, phoneDataKey(userID))
	if err != nil {
		util.LogError("[PhoneVerificationService] не удалось получить TTL данных верификации", err)
		return apperr.ErrInternal
	}
	if ttlLeft <= 0 {
		s.cleanup(ctx, userID)
		return apperr.ErrNotFound
	}
	if data.Attempts >= s.maxAttempts {
		s.cleanup(ctx, userID)
		return apperr.ErrForbidden
	}
	if code != realCode {
		data.Attempts++
		raw, err := json.Marshal(data)
		if err != nil {
			util.LogError("[PhoneVerificationService] не удалось сериализовать данные верификации", err)
			return apperr.ErrInternal
		}
		if err := s.cache.Set(ctx, phoneDataKey(userID), string(raw), ttlLeft); err != nil {
			return apperr.ErrInternal
		}
		return apperr.ErrInvalidState
	}

	if err := s.userRepository.UpdatePhone(ctx, s.db, userID, data.Phone); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return apperr.ErrConflict
		}
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrInternal
	}

	s.cleanup(ctx, userID)
	return nil
}

// Cancel : прерывает текущую верификацию. Идемпотентен.
func (s *PhoneVerificationService) Cancel(ctx context.Context, userID int64) error {
	s.cleanup(ctx, userID)
	return nil
}

func (s *PhoneVerificationService) cleanup(ctx context.Context, userID int64) {
	if err := s.cache.Delete(ctx, phoneDataKey(userID)); err != nil {
		log.Printf("[PhoneVerificationService] не удалось удалить ключ данных пользователя %d: %v", userID, err)
	}
	if err := s.cache.Delete(ctx, phoneCodeKey(userID)); err != nil {
		log.Printf("[PhoneVerificationService] не удалось удалить ключ кода пользователя %d: %v", userID, err)
	}
}
