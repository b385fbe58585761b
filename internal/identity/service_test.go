package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubProfileRepo struct {
	profile    *models.Profile
	findErr    error
	created    *models.Profile
	createErr  error
	lastWallet string
}

func (s *stubProfileRepo) FindByWallet(ctx context.Context, wallet string) (*models.Profile, error) {
	s.lastWallet = wallet
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.profile == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.profile, nil
}

func (s *stubProfileRepo) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = profile
	return profile, nil
}

func TestResolveRequiresWallet(t *testing.T) {
	svc, err := NewService(&stubProfileRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Resolve(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeWalletRequired {
		t.Fatalf("expected WALLET_REQUIRED, got %v", err)
	}
}

func TestResolveMissingProfile(t *testing.T) {
	svc, _ := NewService(&stubProfileRepo{})

	_, err := svc.Resolve(context.Background(), "0xabc123")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeProfileRequired {
		t.Fatalf("expected PROFILE_REQUIRED, got %v", err)
	}
}

func TestResolveFound(t *testing.T) {
	repo := &stubProfileRepo{profile: &models.Profile{WalletAddress: "0xabc123", Role: enums.ProfileRoleFarmer}}
	svc, _ := NewService(repo)

	profile, err := svc.Resolve(context.Background(), "0xABC123")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if profile.Role != enums.ProfileRoleFarmer {
		t.Fatalf("unexpected role %s", profile.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := NewService(&stubProfileRepo{})

	cases := []struct {
		name  string
		input RegisterInput
		code  pkgerrors.Code
	}{
		{"missing wallet", RegisterInput{FullName: "Jane", Role: enums.ProfileRoleFarmer}, pkgerrors.CodeWalletRequired},
		{"missing name", RegisterInput{WalletAddress: "0xabc", Role: enums.ProfileRoleFarmer}, pkgerrors.CodeNameRequired},
		{"bad role", RegisterInput{WalletAddress: "0xabc", FullName: "Jane", Role: enums.ProfileRole("pirate")}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != tc.code {
			t.Errorf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestRegisterNormalizesWallet(t *testing.T) {
	repo := &stubProfileRepo{}
	svc, _ := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		WalletAddress: "0xABCdef0123",
		FullName:      "Jane Doe",
		Role:          enums.ProfileRoleFarmer,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if repo.created.WalletAddress != "0xabcdef0123" {
		t.Fatalf("wallet not normalized: %q", repo.created.WalletAddress)
	}
}

func TestRegisterDuplicateWallet(t *testing.T) {
	repo := &stubProfileRepo{createErr: errors.New(`duplicate key value violates unique constraint "idx_profiles_wallet_address"`)}
	svc, _ := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		WalletAddress: "0xabc",
		FullName:      "Jane",
		Role:          enums.ProfileRoleFarmer,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}
