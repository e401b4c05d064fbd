package ports

import (
	"account-server/internal/model"
	"context"
)

type ActivityTracker interface {
	// Touch — best-effort отметка активности, ошибки не поднимаются к вызывающему
	Touch(ctx context.Context, userID int64)
	Flush(ctx context.Context) ([]model.ActivityRecord, error)
	Apply(ctx context.Context, batch []model.ActivityRecord)
}
