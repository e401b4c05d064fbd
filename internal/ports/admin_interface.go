package ports

import "context"

type AdminService interface {
	Block(ctx context.Context, adminID, userID int64, reason string) error
	Unblock(ctx context.Context, userID int64) error
}
