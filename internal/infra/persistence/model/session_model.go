package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel is the database model for refresh-token sessions.
// The primary key is the refresh token's jti, so one row maps to exactly
// one outstanding refresh token.
type SessionModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;index;not null"`
	TokenHash string    `gorm:"column:token_hash;type:char(64);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for SessionModel
func (SessionModel) TableName() string {
	return "sessions"
}
