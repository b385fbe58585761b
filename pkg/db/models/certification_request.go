package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/organictrace/organictrace-backend/pkg/enums"
)

// CertificationRequest is an off-chain application for organic certification
// review. Status only moves pending -> approved | rejected, enforced by
// conditional updates in the repository.
type CertificationRequest struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID          *uuid.UUID          `gorm:"column:farmer_id;type:uuid"`
	FarmerAddress     string              `gorm:"column:farmer_address;not null"`
	Name              string              `gorm:"column:name;not null"`
	CertificationBody *string             `gorm:"column:certification_body"`
	DocumentURL       *string             `gorm:"column:document_url"`
	Notes             *string             `gorm:"column:notes"`
	Status            enums.RequestStatus `gorm:"column:status;type:request_status;not null;default:'pending'"`
	BlockchainTxHash  *string             `gorm:"column:blockchain_tx_hash"`
	ExpiryDate        *time.Time          `gorm:"column:expiry_date;type:date"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
