package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/organictrace/organictrace-backend/pkg/enums"
)

// Product is the off-chain metadata record for a tracked batch. Ownership
// columns mutate on transfer; ChainProductID maps to the numeric id the
// ProductTracker contract assigned, when the batch was also registered
// on-chain.
type Product struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID            uuid.UUID           `gorm:"column:farmer_id;type:uuid;not null;uniqueIndex:idx_farmer_sku"`
	ProductName         string              `gorm:"column:product_name;not null"`
	ProductSKU          string              `gorm:"column:product_sku;not null;uniqueIndex:idx_farmer_sku"`
	ProductType         string              `gorm:"column:product_type;not null"`
	Description         *string             `gorm:"column:description"`
	FarmingPractices    *string             `gorm:"column:farming_practices"`
	HarvestDate         *time.Time          `gorm:"column:harvest_date;type:date"`
	CertificationID     uuid.UUID           `gorm:"column:certification_id;type:uuid;not null"`
	CurrentOwnerID      *uuid.UUID          `gorm:"column:current_owner_id;type:uuid"`
	CurrentOwnerAddress string              `gorm:"column:current_owner_address;not null"`
	ChainProductID      *uint64             `gorm:"column:chain_product_id"`
	Status              enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'created'"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
