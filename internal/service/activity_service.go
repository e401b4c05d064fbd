package service

import (
	"account-server/config"
	"account-server/internal/model"
	"account-server/internal/ports"
	"account-server/internal/util"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

const (
	lastActivityKeyPrefix = "last-activity"
	// flushScanCount : размер страницы SCAN при выгрузке активности
	flushScanCount = 200
)

// ActivityKey : ключ записи активности пользователя в ephemeral-хранилище
func ActivityKey(userID int64) string {
	return fmt.Sprintf("%s:%d", lastActivityKeyPrefix, userID)
}

// ActivityService накапливает отметки активности в ephemeral-хранилище
// и периодически переносит их в durable-колонку last_activity_at.
// Touch дёшев и вызывается на каждом аутентифицированном запросе,
// durable-запись происходит только при flush.
type ActivityService struct {
	db             *config.Database
	userRepository ports.UserRepository
	cache          ports.EphemeralStore
	ttl            time.Duration
}

func NewActivityService(
	db *config.Database,
	userRepository ports.UserRepository,
	cache ports.EphemeralStore,
	ttlSeconds int,
) *ActivityService {
	return &ActivityService{
		db:             db,
		userRepository: userRepository,
		cache:          cache,
		ttl:            time.Duration(ttlSeconds) * time.Second,
	}
}

// Touch : отмечает активность пользователя. Ошибки хранилища только
// логируются — отметка активности не должна ронять запрос.
func (s *ActivityService) Touch(ctx context.Context, userID int64) {
	value := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.cache.Set(ctx, ActivityKey(userID), value, s.ttl); err != nil {
		log.Printf("[ActivityService] не удалось записать активность пользователя %d: %v", userID, err)
	}
}

// Flush : выгружает накопленные отметки постранично через SCAN + MGET.
// Повреждённые и исчезшие между SCAN и MGET записи пропускаются.
func (s *ActivityService) Flush(ctx context.Context) ([]model.ActivityRecord, error) {
	var records []model.ActivityRecord
	pattern := lastActivityKeyPrefix + ":*"

	var cursor uint64
	for {
		keys, next, err := s.cache.Scan(ctx, pattern, cursor, flushScanCount)
		if err != nil {
			return nil, util.LogError("[ActivityService] ошибка SCAN по ключам активности", err)
		}

		if len(keys) > 0 {
			values, err := s.cache.MGet(ctx, keys)
			if err != nil {
				return nil, util.LogError("[ActivityService] ошибка MGET по ключам активности", err)
			}
			for i, key := range keys {
				if i >= len(values) || values[i] == "" {
					continue
				}
				record, ok := parseActivityRecord(key, values[i])
				if !ok {
					log.Printf("[ActivityService] пропущена повреждённая запись активности %q", key)
					continue
				}
				records = append(records, record)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return records, nil
}

// Apply : переносит отметки в durable-хранилище. Каждая запись
// обрабатывается независимо: сбой одной не останавливает остальные,
// ключ удаляется только после успешного UPDATE.
func (s *ActivityService) Apply(ctx context.Context, batch []model.ActivityRecord) {
	for _, record := range batch {
		if err := s.userRepository.UpdateLastActivity(ctx, s.db, record.UserID, record.SeenAt); err != nil {
			log.Printf("[ActivityService] не удалось обновить активность пользователя %d: %v", record.UserID, err)
			continue
		}
		if err := s.cache.Delete(ctx, record.Key); err != nil {
			log.Printf("[ActivityService] не удалось удалить ключ активности %q: %v", record.Key, err)
		}
	}
}

func parseActivityRecord(key, value string) (model.ActivityRecord, bool) {
	idPart, ok := strings.CutPrefix(key, lastActivityKeyPrefix+":")
	if !ok {
		return model.ActivityRecord{}, false
	}
	userID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return model.ActivityRecord{}, false
	}
	seenAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return model.ActivityRecord{}, false
	}
	return model.ActivityRecord{UserID: userID, SeenAt: seenAt, Key: key}, true
}
