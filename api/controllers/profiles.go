package controllers

import (
	"net/http"
	"time"

	"github.com/organictrace/organictrace-backend/api/responses"
	"github.com/organictrace/organictrace-backend/api/validators"
	"github.com/organictrace/organictrace-backend/internal/identity"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"github.com/organictrace/organictrace-backend/pkg/logger"
)

type registerRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	FullName      string `json:"fullName" validate:"required"`
	Role          string `json:"role" validate:"required"`
}

func (r registerRequest) toInput() (identity.RegisterInput, error) {
	role, err := enums.ParseProfileRole(r.Role)
	if err != nil {
		return identity.RegisterInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid role").WithField("role")
	}
	return identity.RegisterInput{
		WalletAddress: r.WalletAddress,
		FullName:      r.FullName,
		Role:          role,
	}, nil
}

type profileView struct {
	ID            string `json:"id"`
	WalletAddress string `json:"walletAddress"`
	FullName      string `json:"fullName"`
	Role          string `json:"role"`
	CreatedAt     string `json:"createdAt"`
}

func toProfileView(profile *models.Profile) profileView {
	return profileView{
		ID:            profile.ID.String(),
		WalletAddress: profile.WalletAddress,
		FullName:      profile.FullName,
		Role:          string(profile.Role),
		CreatedAt:     profile.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// AuthRegister handles self-service profile signup.
func AuthRegister(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toProfileView(profile))
	}
}

// ProfileMe resolves the caller's profile from the wallet query parameter.
func ProfileMe(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		wallet, err := validators.RequiredQuery(r, "wallet")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Resolve(r.Context(), wallet)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProfileView(profile))
	}
}
