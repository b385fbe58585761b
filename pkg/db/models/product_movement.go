package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/organictrace/organictrace-backend/pkg/enums"
)

// ProductMovement is an append-only custody log entry. Rows are never
// updated or deleted.
type ProductMovement struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	FromUserID   uuid.UUID          `gorm:"column:from_user_id;type:uuid;not null"`
	ToUserID     *uuid.UUID         `gorm:"column:to_user_id;type:uuid"`
	MovementType enums.MovementType `gorm:"column:movement_type;not null"`
	Location     *string            `gorm:"column:location"`
	Notes        *string            `gorm:"column:notes"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}
