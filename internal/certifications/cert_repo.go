package certifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organictrace/organictrace-backend/pkg/db/models"
)

// CertificationRepository persists issued certifications.
type CertificationRepository struct {
	db *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

func (r *CertificationRepository) Create(ctx context.Context, cert *models.Certification) (*models.Certification, error) {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		return nil, err
	}
	return cert, nil
}

func (r *CertificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Certification, error) {
	var cert models.Certification
	if err := r.db.WithContext(ctx).First(&cert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindByBlockchainHash returns the certification correlated to a grant
// transaction, if one was already issued for it.
func (r *CertificationRepository) FindByBlockchainHash(ctx context.Context, hash string) (*models.Certification, error) {
	var cert models.Certification
	if err := r.db.WithContext(ctx).First(&cert, "blockchain_hash = ?", hash).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *CertificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certification, error) {
	var rows []models.Certification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
