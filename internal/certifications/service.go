package certifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organictrace/organictrace-backend/pkg/db"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"github.com/organictrace/organictrace-backend/pkg/logger"
)

// timeNow is swapped out in tests that assert date handling.
var timeNow = time.Now

type requestsRepository interface {
	Create(ctx context.Context, request *models.CertificationRequest) (*models.CertificationRequest, error)
	ListByStatus(ctx context.Context, status enums.RequestStatus) ([]models.CertificationRequest, error)
	ApproveIfPending(ctx context.Context, id uuid.UUID, expiry *time.Time) (*models.CertificationRequest, error)
	ApproveWithHash(ctx context.Context, id uuid.UUID, txHash string, expiry *time.Time) (*models.CertificationRequest, error)
	RejectIfPending(ctx context.Context, id uuid.UUID, reason string) (*models.CertificationRequest, error)
}

type certificationsRepository interface {
	Create(ctx context.Context, cert *models.Certification) (*models.Certification, error)
	FindByBlockchainHash(ctx context.Context, hash string) (*models.Certification, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certification, error)
}

type profileResolver interface {
	Resolve(ctx context.Context, wallet string) (*models.Profile, error)
}

// Service drives the certification review workflow: farmers and processors
// file requests, certifiers work the pending queue, and the proof-carrying
// approval path records an on-chain grant after the fact.
type Service interface {
	CreateRequest(ctx context.Context, input CreateRequestInput) (*models.CertificationRequest, error)
	ListRequests(ctx context.Context, status enums.RequestStatus) ([]models.CertificationRequest, error)
	Approve(ctx context.Context, input ApproveInput) (*models.CertificationRequest, error)
	ApproveWithProof(ctx context.Context, input ApproveWithProofInput) (*models.CertificationRequest, error)
	Reject(ctx context.Context, input RejectInput) (*models.CertificationRequest, error)
	ListCertifications(ctx context.Context, wallet string) ([]models.Certification, error)
}

// CreateRequestInput carries a new certification application.
type CreateRequestInput struct {
	WalletAddress     string
	Name              string
	CertificationBody *string
	DocumentURL       *string
	Notes             *string
}

// ApproveInput is a plain review approval, no on-chain proof attached.
type ApproveInput struct {
	WalletAddress string
	RequestID     uuid.UUID
	ExpiryDate    *time.Time
}

// ApproveWithProofInput carries the transaction hash of an already-executed
// on-chain grant alongside the approval.
type ApproveWithProofInput struct {
	WalletAddress string
	RequestID     uuid.UUID
	TxHash        string
	ExpiryDate    *time.Time
}

// RejectInput carries the reviewer's rejection and reason.
type RejectInput struct {
	WalletAddress string
	RequestID     uuid.UUID
	Reason        string
}

type service struct {
	requests requestsRepository
	certs    certificationsRepository
	profiles profileResolver
	logg     *logger.Logger
}

// NewService builds the certification workflow service.
func NewService(requests requestsRepository, certs certificationsRepository, profiles profileResolver, logg *logger.Logger) (Service, error) {
	if requests == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if certs == nil {
		return nil, fmt.Errorf("certification repository required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{requests: requests, certs: certs, profiles: profiles, logg: logg}, nil
}

func (s *service) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.CertificationRequest, error) {
	profile, err := s.profiles.Resolve(ctx, input.WalletAddress)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNameRequired, "name is required").WithField("name")
	}

	request := &models.CertificationRequest{
		FarmerID:          &profile.ID,
		FarmerAddress:     profile.WalletAddress,
		Name:              strings.TrimSpace(input.Name),
		CertificationBody: input.CertificationBody,
		DocumentURL:       input.DocumentURL,
		Notes:             input.Notes,
	}

	created, err := s.requests.Create(ctx, request)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create certification request")
	}
	return created, nil
}

func (s *service) ListRequests(ctx context.Context, status enums.RequestStatus) ([]models.CertificationRequest, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").WithField("status")
	}
	rows, err := s.requests.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list certification requests")
	}
	return rows, nil
}

func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.CertificationRequest, error) {
	ctx, err := s.requireCertifier(ctx, input.WalletAddress)
	if err != nil {
		return nil, err
	}

	request, err := s.requests.ApproveIfPending(ctx, input.RequestID, input.ExpiryDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending request with this id")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve certification request")
	}
	s.logg.Info(s.logg.WithField(ctx, "request_id", request.ID.String()), "certification request approved")
	return request, nil
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*models.CertificationRequest, error) {
	ctx, err := s.requireCertifier(ctx, input.WalletAddress)
	if err != nil {
		return nil, err
	}

	request, err := s.requests.RejectIfPending(ctx, input.RequestID, strings.TrimSpace(input.Reason))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending request with this id")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject certification request")
	}
	s.logg.Info(s.logg.WithField(ctx, "request_id", request.ID.String()), "certification request rejected")
	return request, nil
}

// ApproveWithProof records an approval that already happened on chain. The
// approval update is not guarded on pending status; replays converge because
// certificate issuance is keyed on the transaction hash. The certification
// insert is best-effort: a failure there is logged and the approval stands,
// leaving the grant reconcilable from the hash stored on the request.
func (s *service) ApproveWithProof(ctx context.Context, input ApproveWithProofInput) (*models.CertificationRequest, error) {
	ctx, err := s.requireCertifier(ctx, input.WalletAddress)
	if err != nil {
		return nil, err
	}

	txHash := strings.TrimSpace(input.TxHash)
	if txHash == "" {
		return nil, pkgerrors.New(pkgerrors.CodeRequiredFields, "txHash is required").WithField("txHash")
	}

	request, err := s.requests.ApproveWithHash(ctx, input.RequestID, txHash, input.ExpiryDate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeApproveFailed, "request could not be approved").
				WithHint("verify the request id")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve certification request")
	}

	if existing, err := s.certs.FindByBlockchainHash(ctx, txHash); err == nil && existing != nil {
		return request, nil
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Error(ctx, "lookup certification by hash", err)
		return request, nil
	}

	if request.FarmerID == nil {
		s.logg.Warn(ctx, "approved request has no linked profile, skipping certification record")
		return request, nil
	}

	// Without an expiry on the request the certificate closes on its grant
	// day; eligibility beyond that needs an explicit expiry date.
	now := timeNow().UTC()
	validUntil := now
	if request.ExpiryDate != nil {
		validUntil = *request.ExpiryDate
	}

	issuingBody := "OrganicTrace Registry"
	if request.CertificationBody != nil && strings.TrimSpace(*request.CertificationBody) != "" {
		issuingBody = *request.CertificationBody
	}

	cert := &models.Certification{
		UserID:              *request.FarmerID,
		CertificationType:   "organic",
		IssuingBody:         issuingBody,
		CertificationNumber: certificationNumber(txHash, now),
		ValidFrom:           dateOnly(now),
		ValidUntil:          dateOnly(validUntil),
		CertificateURL:      request.DocumentURL,
		Verified:            true,
		BlockchainHash:      txHash,
	}

	if _, err := s.certs.Create(ctx, cert); err != nil {
		if db.IsUniqueViolation(err, "") {
			// Lost a replay race on blockchain_hash; the winner's record stands.
			return request, nil
		}
		s.logg.Error(ctx, "record certification for approved request", err)
	}
	return request, nil
}

func (s *service) ListCertifications(ctx context.Context, wallet string) ([]models.Certification, error) {
	profile, err := s.profiles.Resolve(ctx, wallet)
	if err != nil {
		return nil, err
	}
	rows, err := s.certs.ListByUser(ctx, profile.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list certifications")
	}
	return rows, nil
}

// requireCertifier resolves the acting profile, enforces the certifier role,
// and returns a context whose log lines carry the reviewer's identity.
func (s *service) requireCertifier(ctx context.Context, wallet string) (context.Context, error) {
	profile, err := s.profiles.Resolve(ctx, wallet)
	if err != nil {
		return ctx, err
	}
	if profile.Role != enums.ProfileRoleCertifier {
		return ctx, pkgerrors.New(pkgerrors.CodeRoleForbidden, "only certifiers can review requests")
	}
	ctx = s.logg.WithProfileID(ctx, profile.ID.String())
	ctx = s.logg.WithActorRole(ctx, string(profile.Role))
	return ctx, nil
}

// certificationNumber derives a human-readable certificate number from the
// grant transaction hash plus a time suffix so re-issues after a hash
// collision repair remain distinguishable.
func certificationNumber(txHash string, now time.Time) string {
	fragment := strings.TrimPrefix(txHash, "0x")
	if len(fragment) > 6 {
		fragment = fragment[:6]
	}
	return fmt.Sprintf("CERT-%s-%06d", strings.ToUpper(fragment), now.Unix()%1_000_000)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
