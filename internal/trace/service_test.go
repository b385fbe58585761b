package trace

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organictrace/organictrace-backend/pkg/chain"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
)

type stubTracker struct {
	product *chain.TrackedProduct
	err     error
}

func (s *stubTracker) GetProduct(ctx context.Context, productID uint64) (*chain.TrackedProduct, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

type stubRegistry struct {
	verified  bool
	verifyErr error
	fact      *chain.RegistryCertification
	factErr   error
}

func (s *stubRegistry) Verify(ctx context.Context, farmer string) (bool, error) {
	if s.verifyErr != nil {
		return false, s.verifyErr
	}
	return s.verified, nil
}

func (s *stubRegistry) GetCertification(ctx context.Context, farmer string) (*chain.RegistryCertification, error) {
	if s.factErr != nil {
		return nil, s.factErr
	}
	return s.fact, nil
}

type stubProducts struct {
	product *models.Product
	err     error
}

func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.product == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

const (
	farmerAddr = "0x1111111111111111111111111111111111111111"
	ownerAddr  = "0x2222222222222222222222222222222222222222"
)

// 2025-06-15T00:00:00Z
const june15 = int64(1749945600)

func trackedFixture() *chain.TrackedProduct {
	return &chain.TrackedProduct{
		ID:           big.NewInt(7),
		Farmer:       common.HexToAddress(farmerAddr),
		CurrentOwner: common.HexToAddress(ownerAddr),
		ProductName:  "Organic Tomatoes",
		CreatedAt:    big.NewInt(june15),
		History: []chain.TrackedHistoryEntry{
			{
				Actor:     common.HexToAddress(farmerAddr),
				Action:    "harvest",
				Timestamp: big.NewInt(june15),
				Details:   "field 3",
			},
		},
	}
}

func TestTraceAssemblesDisplayView(t *testing.T) {
	svc, err := NewService(
		&stubTracker{product: trackedFixture()},
		&stubRegistry{verified: true, fact: &chain.RegistryCertification{
			Certified:         true,
			CertificationBody: "EcoCert",
			GrantedAt:         big.NewInt(june15),
			ExpiryDate:        big.NewInt(june15 + 365*86400),
		}},
		&stubProducts{},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	view, err := svc.Trace(context.Background(), 7)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if view.ChainProductID != 7 {
		t.Fatalf("unexpected id %d", view.ChainProductID)
	}
	if view.Farmer != "0x1111…1111" {
		t.Fatalf("farmer address not shortened: %q", view.Farmer)
	}
	if view.CreatedAt != "2025-06-15" {
		t.Fatalf("epoch not rendered as date: %q", view.CreatedAt)
	}
	if !view.Certified || view.Certification == nil {
		t.Fatalf("expected certified badge with detail")
	}
	if view.Certification.Body != "EcoCert" {
		t.Fatalf("unexpected body %q", view.Certification.Body)
	}
	if len(view.History) != 1 || view.History[0].Action != "harvest" {
		t.Fatalf("history not projected: %+v", view.History)
	}
	if view.History[0].Timestamp != "2025-06-15" {
		t.Fatalf("history timestamp not rendered: %q", view.History[0].Timestamp)
	}
}

func TestTraceUnknownChainProduct(t *testing.T) {
	svc, _ := NewService(
		&stubTracker{product: &chain.TrackedProduct{ID: big.NewInt(0)}},
		&stubRegistry{},
		&stubProducts{},
	)

	_, err := svc.Trace(context.Background(), 99)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestTraceSurvivesRegistryFailure(t *testing.T) {
	svc, _ := NewService(
		&stubTracker{product: trackedFixture()},
		&stubRegistry{verifyErr: errors.New("rpc down")},
		&stubProducts{},
	)

	view, err := svc.Trace(context.Background(), 7)
	if err != nil {
		t.Fatalf("trace should survive registry failure: %v", err)
	}
	if view.Certified {
		t.Fatalf("badge must be hidden when the registry is unreachable")
	}
}

func TestTraceTrackerFailureIsDependencyError(t *testing.T) {
	svc, _ := NewService(
		&stubTracker{err: errors.New("rpc down")},
		&stubRegistry{},
		&stubProducts{},
	)

	_, err := svc.Trace(context.Background(), 7)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %v", err)
	}
}

func TestTraceByProductIDResolvesChainID(t *testing.T) {
	chainID := uint64(7)
	svc, _ := NewService(
		&stubTracker{product: trackedFixture()},
		&stubRegistry{},
		&stubProducts{product: &models.Product{ID: uuid.New(), ChainProductID: &chainID}},
	)

	view, err := svc.TraceByProductID(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("TraceByProductID: %v", err)
	}
	if view.ChainProductID != 7 {
		t.Fatalf("unexpected chain id %d", view.ChainProductID)
	}
}

func TestTraceByProductIDRequiresChainRegistration(t *testing.T) {
	svc, _ := NewService(
		&stubTracker{product: trackedFixture()},
		&stubRegistry{},
		&stubProducts{product: &models.Product{ID: uuid.New()}},
	)

	_, err := svc.TraceByProductID(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for off-chain-only product, got %v", err)
	}
}

func TestTraceByProductIDMissingProduct(t *testing.T) {
	svc, _ := NewService(&stubTracker{}, &stubRegistry{}, &stubProducts{})

	_, err := svc.TraceByProductID(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
