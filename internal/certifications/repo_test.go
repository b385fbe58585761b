package certifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
)

func setupCertificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named in-memory database so every pooled connection sees the same
	// tables, isolated per test.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	requests := `
CREATE TABLE IF NOT EXISTS certification_requests (
  id TEXT PRIMARY KEY,
  farmer_id TEXT,
  farmer_address TEXT NOT NULL,
  name TEXT NOT NULL,
  certification_body TEXT,
  document_url TEXT,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  blockchain_tx_hash TEXT,
  expiry_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	certs := `
CREATE TABLE IF NOT EXISTS certifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  certification_type TEXT NOT NULL,
  issuing_body TEXT NOT NULL,
  certification_number TEXT NOT NULL,
  valid_from DATETIME NOT NULL,
  valid_until DATETIME NOT NULL,
  certificate_url TEXT,
  verified INTEGER NOT NULL DEFAULT 0,
  blockchain_hash TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`
	require.NoError(t, gdb.Exec(requests).Error)
	require.NoError(t, gdb.Exec(certs).Error)
	return gdb
}

func seedRequest(t *testing.T, repo *RequestRepository, name string) *models.CertificationRequest {
	t.Helper()
	created, err := repo.Create(context.Background(), &models.CertificationRequest{
		ID:            uuid.New(),
		FarmerAddress: "0xfarm",
		Name:          name,
	})
	require.NoError(t, err)
	return created
}

func TestRequestRepositoryApproveIfPending(t *testing.T) {
	repo := NewRequestRepository(setupCertificationsTestDB(t))
	ctx := context.Background()
	request := seedRequest(t, repo, "Green Valley Farm")

	approved, err := repo.ApproveIfPending(ctx, request.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.RequestStatusApproved, approved.Status)

	// A second approval finds no pending row.
	_, err = repo.ApproveIfPending(ctx, request.ID, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRequestRepositoryRejectThenApproveFails(t *testing.T) {
	repo := NewRequestRepository(setupCertificationsTestDB(t))
	ctx := context.Background()
	request := seedRequest(t, repo, "Sunrise Orchard")

	rejected, err := repo.RejectIfPending(ctx, request.ID, "incomplete paperwork")
	require.NoError(t, err)
	assert.Equal(t, enums.RequestStatusRejected, rejected.Status)
	require.NotNil(t, rejected.Notes)
	assert.Equal(t, "incomplete paperwork", *rejected.Notes)

	_, err = repo.ApproveIfPending(ctx, request.ID, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRequestRepositoryApproveWithHashIgnoresStatus(t *testing.T) {
	repo := NewRequestRepository(setupCertificationsTestDB(t))
	ctx := context.Background()
	request := seedRequest(t, repo, "Hillside Dairy")

	_, err := repo.ApproveIfPending(ctx, request.ID, nil)
	require.NoError(t, err)

	// Proof-carrying approval still lands on an already-approved row.
	updated, err := repo.ApproveWithHash(ctx, request.ID, "0xabc", nil)
	require.NoError(t, err)
	assert.Equal(t, enums.RequestStatusApproved, updated.Status)
	require.NotNil(t, updated.BlockchainTxHash)
	assert.Equal(t, "0xabc", *updated.BlockchainTxHash)

	_, err = repo.ApproveWithHash(ctx, uuid.New(), "0xabc", nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRequestRepositoryListByStatusOldestFirst(t *testing.T) {
	gdb := setupCertificationsTestDB(t)
	repo := NewRequestRepository(gdb)
	ctx := context.Background()

	first := seedRequest(t, repo, "First Farm")
	second := seedRequest(t, repo, "Second Farm")
	require.NoError(t, gdb.Exec(
		"UPDATE certification_requests SET created_at = ? WHERE id = ?",
		"2026-01-01 00:00:00", first.ID,
	).Error)
	require.NoError(t, gdb.Exec(
		"UPDATE certification_requests SET created_at = ? WHERE id = ?",
		"2026-02-01 00:00:00", second.ID,
	).Error)

	rows, err := repo.ListByStatus(ctx, enums.RequestStatusPending)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "First Farm", rows[0].Name)
	assert.Equal(t, "Second Farm", rows[1].Name)
}

func TestCertificationRepositoryUniqueHash(t *testing.T) {
	repo := NewCertificationRepository(setupCertificationsTestDB(t))
	ctx := context.Background()
	userID := uuid.New()

	base := models.Certification{
		UserID:              userID,
		CertificationType:   "organic",
		IssuingBody:         "OrganicTrace Registry",
		CertificationNumber: "CERT-ABC123-000001",
		Verified:            true,
		BlockchainHash:      "0xdup",
	}

	one := base
	one.ID = uuid.New()
	_, err := repo.Create(ctx, &one)
	require.NoError(t, err)

	two := base
	two.ID = uuid.New()
	_, err = repo.Create(ctx, &two)
	assert.Error(t, err)

	found, err := repo.FindByBlockchainHash(ctx, "0xdup")
	require.NoError(t, err)
	assert.Equal(t, one.ID, found.ID)

	listed, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
