package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
	"github.com/organictrace/organictrace-backend/pkg/pagination"
)

// Repository persists products and their custody trail.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByOwner returns a page of products held by the given profile, matching
// either the owner id or the owner address. Address matching covers products
// that were transferred to a wallet before its profile existed. The second
// return value is the cursor for the next page, empty on the last page.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, wallet string, page pagination.Params) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Where("current_owner_id = ? OR current_owner_address = ?", ownerID, wallet)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(page.Limit)
	var rows []models.Product
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(page.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// Movements returns the custody trail oldest first.
func (r *Repository) Movements(ctx context.Context, productID uuid.UUID) ([]models.ProductMovement, error) {
	var rows []models.ProductMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CertificationByID fetches the certification referenced by a new product so
// the service can gate creation on it.
func (r *Repository) CertificationByID(ctx context.Context, id uuid.UUID) (*models.Certification, error) {
	var cert models.Certification
	if err := r.db.WithContext(ctx).First(&cert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// TransferCustody appends the movement row and rewrites the product's
// ownership columns in a single transaction, so the trail and the current
// owner can never disagree.
func (r *Repository) TransferCustody(ctx context.Context, product *models.Product, movement *models.ProductMovement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movement).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"current_owner_id":      product.CurrentOwnerID,
			"current_owner_address": product.CurrentOwnerAddress,
			"status":                enums.ProductStatusInTransit,
		}
		res := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
