package token

import (
	"account-server/internal/apperr"
	"account-server/internal/ports"
	"account-server/internal/util"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// Payload : типизированное содержимое одноразового токена.
// Validate отсекает повреждённые или подделанные данные при чтении.
type Payload interface {
	Validate() error
}

// Registry — одноразовые токены одного назначения поверх ephemeral-хранилища.
// Ключи имеют вид <purpose><uuid>, срок жизни задаётся на назначение.
//
// Consume намеренно не удаляет токен: удаление — обязанность вызывающего
// и выполняется только после коммита durable-мутации, которую токен
// авторизует. Если мутация не удалась, токен остаётся валидным для повтора.
type Registry[T Payload] struct {
	store   ports.EphemeralStore
	purpose string
	ttl     time.Duration
}

func NewRegistry[T Payload](store ports.EphemeralStore, purpose string, ttl time.Duration) *Registry[T] {
	return &Registry[T]{
		store:   store,
		purpose: purpose,
		ttl:     ttl,
	}
}

// Issue : сохраняет payload под свежим случайным идентификатором и возвращает его
func (r *Registry[T]) Issue(ctx context.Context, payload T) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		util.LogError("[TokenRegistry] ошибка сериализации payload", err)
		return "", apperr.ErrInternal
	}

	tokenStr := uuid.New().String()
	if err := r.store.Set(ctx, r.purpose+tokenStr, string(data), r.ttl); err != nil {
		util.LogError("[TokenRegistry] ошибка сохранения токена", err)
		return "", apperr.ErrInternal
	}

	return tokenStr, nil
}

// Consume : читает payload токена. Просроченный, отсутствующий или
// повреждённый токен неотличимы друг от друга — всегда apperr.ErrNotFound.
func (r *Registry[T]) Consume(ctx context.Context, tokenStr string) (T, error) {
	var payload T

	raw, err := r.store.Get(ctx, r.purpose+tokenStr)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return payload, apperr.ErrNotFound
		}
		util.LogError("[TokenRegistry] ошибка чтения токена", err)
		return payload, apperr.ErrInternal
	}

	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Printf("[TokenRegistry] повреждённый payload для назначения %s: %v", r.purpose, err)
		return payload, apperr.ErrNotFound
	}
	if err := payload.Validate(); err != nil {
		log.Printf("[TokenRegistry] payload не прошёл проверку формы: %v", err)
		return payload, apperr.ErrNotFound
	}

	return payload, nil
}

// Delete : идемпотентное удаление, ошибки только логируются
func (r *Registry[T]) Delete(ctx context.Context, tokenStr string) {
	if err := r.store.Delete(ctx, r.purpose+tokenStr); err != nil {
		log.Printf("[TokenRegistry] не удалось удалить токен %s: %v", r.purpose, err)
	}
}
