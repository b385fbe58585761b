package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/organictrace/organictrace-backend/pkg/db"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"gorm.io/gorm"
)

type profilesRepository interface {
	FindByWallet(ctx context.Context, wallet string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// Service resolves wallet addresses to profiles and handles self-service
// signup.
//
// Identity here is capability-style: the caller asserts a wallet address and
// the server resolves it per request. There is no signature challenge on the
// mutating routes; if one is added later, this resolver is where the
// verified credential would be checked before the profile lookup.
type Service interface {
	// Resolve maps a wallet address to its unique profile. A missing
	// profile is an authorization failure, not an invitation to
	// auto-provision: callers must sign up first.
	Resolve(ctx context.Context, wallet string) (*models.Profile, error)
	Register(ctx context.Context, input RegisterInput) (*models.Profile, error)
}

// RegisterInput holds the fields required to create a profile.
type RegisterInput struct {
	WalletAddress string
	FullName      string
	Role          enums.ProfileRole
}

type service struct {
	repo profilesRepository
}

// NewService builds the identity service backed by the profile repository.
func NewService(repo profilesRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Resolve(ctx context.Context, wallet string) (*models.Profile, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeWalletRequired, "walletAddress is required").WithField("walletAddress")
	}

	profile, err := s.repo.FindByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeProfileRequired, "no profile for this wallet").
				WithHint("create a profile before performing this action")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup profile")
	}
	return profile, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	if strings.TrimSpace(input.WalletAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeWalletRequired, "walletAddress is required").WithField("walletAddress")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNameRequired, "fullName is required").WithField("fullName")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").WithField("role")
	}

	profile := &models.Profile{
		WalletAddress: NormalizeWallet(input.WalletAddress),
		FullName:      strings.TrimSpace(input.FullName),
		Role:          input.Role,
	}

	created, err := s.repo.Create(ctx, profile)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a profile already exists for this wallet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return created, nil
}
