package models

import (
	"time"

	"github.com/google/uuid"
)

// Certification is the off-chain record of a granted certification,
// correlated to the on-chain grant transaction by BlockchainHash. The unique
// index on blockchain_hash is what makes proof-carrying approval replays
// idempotent: at most one certification per transaction.
type Certification struct {
	ID                  uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID              uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	CertificationType   string    `gorm:"column:certification_type;not null"`
	IssuingBody         string    `gorm:"column:issuing_body;not null"`
	CertificationNumber string    `gorm:"column:certification_number;not null"`
	ValidFrom           time.Time `gorm:"column:valid_from;type:date;not null"`
	ValidUntil          time.Time `gorm:"column:valid_until;type:date;not null"`
	CertificateURL      *string   `gorm:"column:certificate_url"`
	Verified            bool      `gorm:"column:verified;not null;default:false"`
	BlockchainHash      string    `gorm:"column:blockchain_hash;not null;uniqueIndex"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
}
