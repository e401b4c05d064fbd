package model

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID             int64          `db:"id" json:"id"`
	Email          string         `db:"email" json:"email"`
	Nickname       sql.NullString `db:"nickname" json:"nickname,omitempty"`
	PhoneNumber    sql.NullString `db:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string         `db:"password" json:"-"`
	Role           Role           `db:"role" json:"role"`
	RefreshToken   sql.NullString `db:"refresh_token" json:"-"`
	IsBlocked      bool           `db:"is_blocked" json:"is_blocked"`
	BlockedAt      sql.NullTime   `db:"blocked_at" json:"blocked_at,omitempty"`
	BlockedBy      sql.NullInt64  `db:"blocked_by" json:"blocked_by,omitempty"`
	BlockedReason  sql.NullString `db:"blocked_reason" json:"blocked_reason,omitempty"`
	LastActivityAt sql.NullTime   `db:"last_activity_at" json:"last_activity_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
