package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/organictrace/organictrace-backend/pkg/enums"
)

// Profile associates a wallet address with a role and display name. The
// wallet address is stored lowercased; the unique index makes concurrent
// signups for the same wallet lose cleanly.
type Profile struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletAddress string            `gorm:"column:wallet_address;not null;uniqueIndex"`
	FullName      string            `gorm:"column:full_name;not null"`
	Role          enums.ProfileRole `gorm:"column:role;type:profile_role;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
