package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organictrace/organictrace-backend/internal/identity"
	"github.com/organictrace/organictrace-backend/pkg/db"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"github.com/organictrace/organictrace-backend/pkg/pagination"
)

// timeNow is swapped out in tests that pin the certification window check.
var timeNow = time.Now

type productsRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, wallet string, page pagination.Params) ([]models.Product, string, error)
	Movements(ctx context.Context, productID uuid.UUID) ([]models.ProductMovement, error)
	CertificationByID(ctx context.Context, id uuid.UUID) (*models.Certification, error)
	TransferCustody(ctx context.Context, product *models.Product, movement *models.ProductMovement) error
}

type profileResolver interface {
	Resolve(ctx context.Context, wallet string) (*models.Profile, error)
}

// Service registers products and moves custody along the supply chain.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListOwned(ctx context.Context, wallet string, page pagination.Params) ([]models.Product, string, error)
	Movements(ctx context.Context, productID uuid.UUID) ([]models.ProductMovement, error)
	Transfer(ctx context.Context, input TransferInput) (*models.Product, error)
}

// CreateInput carries a new product registration.
type CreateInput struct {
	WalletAddress    string
	ProductName      string
	ProductSKU       string
	ProductType      string
	Description      *string
	FarmingPractices *string
	HarvestDate      *time.Time
	CertificationID  uuid.UUID
	ChainProductID   *uint64
}

// TransferInput moves custody of a product to another wallet.
type TransferInput struct {
	WalletAddress string
	ProductID     uuid.UUID
	ToWallet      string
	Location      *string
	Notes         *string
}

type service struct {
	repo     productsRepository
	profiles profileResolver
}

// NewService builds the product lifecycle service.
func NewService(repo productsRepository, profiles profileResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile resolver required")
	}
	return &service{repo: repo, profiles: profiles}, nil
}

// Create registers a product after the eligibility gate: the actor must hold
// the farmer role and own a verified certification whose validity window
// covers today.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	profile, err := s.profiles.Resolve(ctx, input.WalletAddress)
	if err != nil {
		return nil, err
	}
	if profile.Role != enums.ProfileRoleFarmer {
		return nil, pkgerrors.New(pkgerrors.CodeRoleForbidden, "only farmers can register products")
	}

	if err := requireFields(map[string]string{
		"productName": input.ProductName,
		"productSku":  input.ProductSKU,
		"productType": input.ProductType,
	}); err != nil {
		return nil, err
	}
	if input.CertificationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeRequiredFields, "certificationId is required").WithField("certificationId")
	}

	if err := s.checkCertification(ctx, input.CertificationID, profile.ID); err != nil {
		return nil, err
	}

	product := &models.Product{
		FarmerID:            profile.ID,
		ProductName:         strings.TrimSpace(input.ProductName),
		ProductSKU:          strings.TrimSpace(input.ProductSKU),
		ProductType:         strings.TrimSpace(input.ProductType),
		Description:         input.Description,
		FarmingPractices:    input.FarmingPractices,
		HarvestDate:         input.HarvestDate,
		CertificationID:     input.CertificationID,
		CurrentOwnerID:      &profile.ID,
		CurrentOwnerAddress: profile.WalletAddress,
		ChainProductID:      input.ChainProductID,
		Status:              enums.ProductStatusCreated,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_farmer_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeSKUConflict, "you already registered a product with this SKU").
				WithField("productSku")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch product")
	}
	return product, nil
}

func (s *service) ListOwned(ctx context.Context, wallet string, page pagination.Params) ([]models.Product, string, error) {
	if _, err := pagination.ParseCursor(page.Cursor); err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor").WithField("cursor")
	}
	profile, err := s.profiles.Resolve(ctx, wallet)
	if err != nil {
		return nil, "", err
	}
	rows, next, err := s.repo.ListByOwner(ctx, profile.ID, profile.WalletAddress, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, next, nil
}

func (s *service) Movements(ctx context.Context, productID uuid.UUID) ([]models.ProductMovement, error) {
	if _, err := s.Get(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Movements(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product movements")
	}
	return rows, nil
}

// Transfer hands custody to another wallet. The actor must be the current
// owner, matched by profile id or by wallet address; the destination wallet
// does not need a profile yet.
func (s *service) Transfer(ctx context.Context, input TransferInput) (*models.Product, error) {
	profile, err := s.profiles.Resolve(ctx, input.WalletAddress)
	if err != nil {
		return nil, err
	}

	toWallet := identity.NormalizeWallet(input.ToWallet)
	if toWallet == "" {
		return nil, pkgerrors.New(pkgerrors.CodeRequiredFields, "toWallet is required").WithField("toWallet")
	}

	product, err := s.Get(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if !ownsProduct(profile, product) {
		return nil, pkgerrors.New(pkgerrors.CodeNotOwner, "only the current owner can transfer this product")
	}
	if toWallet == identity.NormalizeWallet(product.CurrentOwnerAddress) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is already held by this wallet").WithField("toWallet")
	}

	movement := &models.ProductMovement{
		ProductID:    product.ID,
		FromUserID:   profile.ID,
		MovementType: enums.MovementTypeTransfer,
		Location:     input.Location,
		Notes:        input.Notes,
	}

	product.CurrentOwnerID = nil
	product.CurrentOwnerAddress = toWallet
	if dest, err := s.profiles.Resolve(ctx, toWallet); err == nil {
		product.CurrentOwnerID = &dest.ID
		movement.ToUserID = &dest.ID
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeProfileRequired {
		return nil, err
	}

	if err := s.repo.TransferCustody(ctx, product, movement); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transfer product")
	}

	product.Status = enums.ProductStatusInTransit
	return product, nil
}

// checkCertification enforces the registration gate against the referenced
// certification record.
func (s *service) checkCertification(ctx context.Context, certID, ownerID uuid.UUID) error {
	cert, err := s.repo.CertificationByID(ctx, certID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeCertInvalid, "certification not found").WithField("certificationId")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch certification")
	}
	if cert.UserID != ownerID {
		return pkgerrors.New(pkgerrors.CodeCertInvalid, "certification belongs to another profile").WithField("certificationId")
	}
	if !cert.Verified {
		return pkgerrors.New(pkgerrors.CodeCertInvalid, "certification is not verified").WithField("certificationId")
	}

	today := timeNow().UTC().Truncate(24 * time.Hour)
	if today.Before(cert.ValidFrom) || today.After(cert.ValidUntil) {
		return pkgerrors.New(pkgerrors.CodeCertInvalid, "certification is outside its validity window").
			WithField("certificationId").
			WithHint("renew the certification before registering products")
	}
	return nil
}

func ownsProduct(profile *models.Profile, product *models.Product) bool {
	if product.CurrentOwnerID != nil && *product.CurrentOwnerID == profile.ID {
		return true
	}
	return identity.NormalizeWallet(product.CurrentOwnerAddress) == identity.NormalizeWallet(profile.WalletAddress)
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if len(missing) == 1 {
		return pkgerrors.New(pkgerrors.CodeRequiredFields, missing[0]+" is required").WithField(missing[0])
	}
	return pkgerrors.New(pkgerrors.CodeRequiredFields, "missing required fields").
		WithDetails(map[string]any{"missing": missing})
}
