package identity

import (
	"context"
	"strings"

	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profile repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeWallet lowercases a wallet address for storage and comparison.
// Hex addresses are case-insensitive; lowercasing once at the boundary keeps
// every downstream equality check simple.
func NormalizeWallet(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// FindByWallet returns the unique profile for a wallet address, matched
// case-insensitively.
func (r *Repository) FindByWallet(ctx context.Context, wallet string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("wallet_address = ?", NormalizeWallet(wallet)).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create inserts a new profile row. The unique index on wallet_address
// resolves concurrent signups for the same wallet; the loser surfaces a
// unique violation.
func (r *Repository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	profile.WalletAddress = NormalizeWallet(profile.WalletAddress)
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
