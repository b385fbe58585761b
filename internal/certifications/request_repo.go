package certifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
)

// RequestRepository exposes certification request persistence operations.
// The approve/reject writes are conditional updates; the WHERE clause on
// status is the only concurrency control, so a lost race surfaces as zero
// rows affected rather than a double transition.
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository constructs a request repository tied to the provided
// GORM DB.
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request row with pending status.
func (r *RequestRepository) Create(ctx context.Context, request *models.CertificationRequest) (*models.CertificationRequest, error) {
	request.Status = enums.RequestStatusPending
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// FindByID returns a single request.
func (r *RequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CertificationRequest, error) {
	var request models.CertificationRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByStatus returns requests in the given state ordered oldest first, so
// reviewers work the queue FIFO.
func (r *RequestRepository) ListByStatus(ctx context.Context, status enums.RequestStatus) ([]models.CertificationRequest, error) {
	var rows []models.CertificationRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ApproveIfPending transitions pending -> approved. Returns
// gorm.ErrRecordNotFound when the request does not exist or is no longer
// pending.
func (r *RequestRepository) ApproveIfPending(ctx context.Context, id uuid.UUID, expiry *time.Time) (*models.CertificationRequest, error) {
	updates := map[string]any{"status": enums.RequestStatusApproved}
	if expiry != nil {
		updates["expiry_date"] = *expiry
	}

	res := r.db.WithContext(ctx).
		Model(&models.CertificationRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// ApproveWithHash applies the proof-carrying approval. It is scoped by id
// only: a request that already left pending is overwritten to approved with
// the supplied transaction hash. Replays stay safe because certificate
// issuance dedups on the hash, not because this write guards on status.
func (r *RequestRepository) ApproveWithHash(ctx context.Context, id uuid.UUID, txHash string, expiry *time.Time) (*models.CertificationRequest, error) {
	updates := map[string]any{
		"status":             enums.RequestStatusApproved,
		"blockchain_tx_hash": txHash,
	}
	if expiry != nil {
		updates["expiry_date"] = *expiry
	}

	res := r.db.WithContext(ctx).
		Model(&models.CertificationRequest{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// RejectIfPending transitions pending -> rejected, recording the reason in
// the notes column. Same zero-rows semantics as ApproveIfPending.
func (r *RequestRepository) RejectIfPending(ctx context.Context, id uuid.UUID, reason string) (*models.CertificationRequest, error) {
	updates := map[string]any{"status": enums.RequestStatusRejected}
	if reason != "" {
		updates["notes"] = reason
	}

	res := r.db.WithContext(ctx).
		Model(&models.CertificationRequest{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}
