package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/organictrace/organictrace-backend/api/responses"
	"github.com/organictrace/organictrace-backend/api/validators"
	"github.com/organictrace/organictrace-backend/internal/certifications"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"github.com/organictrace/organictrace-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

type certificationRequestCreate struct {
	WalletAddress     string  `json:"walletAddress" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	CertificationBody *string `json:"certificationBody"`
	DocumentURL       *string `json:"documentUrl"`
	Notes             *string `json:"notes"`
}

func (r certificationRequestCreate) toInput() certifications.CreateRequestInput {
	return certifications.CreateRequestInput{
		WalletAddress:     r.WalletAddress,
		Name:              r.Name,
		CertificationBody: r.CertificationBody,
		DocumentURL:       r.DocumentURL,
		Notes:             r.Notes,
	}
}

type certificationRequestReview struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	TxHash        string `json:"txHash"`
	ExpiryDate    string `json:"expiryDate"`
	Reason        string `json:"reason"`
}

func (r certificationRequestReview) expiry() (*time.Time, error) {
	raw := strings.TrimSpace(r.ExpiryDate)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiryDate must be YYYY-MM-DD").WithField("expiryDate")
	}
	return &parsed, nil
}

type certificationRequestView struct {
	ID                string  `json:"id"`
	FarmerID          *string `json:"farmerId,omitempty"`
	FarmerAddress     string  `json:"farmerAddress"`
	Name              string  `json:"name"`
	CertificationBody *string `json:"certificationBody,omitempty"`
	DocumentURL       *string `json:"documentUrl,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	Status            string  `json:"status"`
	BlockchainTxHash  *string `json:"blockchainTxHash,omitempty"`
	ExpiryDate        *string `json:"expiryDate,omitempty"`
	CreatedAt         string  `json:"createdAt"`
}

func toCertificationRequestView(request *models.CertificationRequest) certificationRequestView {
	view := certificationRequestView{
		ID:                request.ID.String(),
		FarmerAddress:     request.FarmerAddress,
		Name:              request.Name,
		CertificationBody: request.CertificationBody,
		DocumentURL:       request.DocumentURL,
		Notes:             request.Notes,
		Status:            string(request.Status),
		BlockchainTxHash:  request.BlockchainTxHash,
		CreatedAt:         request.CreatedAt.UTC().Format(time.RFC3339),
	}
	if request.FarmerID != nil {
		id := request.FarmerID.String()
		view.FarmerID = &id
	}
	if request.ExpiryDate != nil {
		date := request.ExpiryDate.UTC().Format(dateLayout)
		view.ExpiryDate = &date
	}
	return view
}

// CertificationRequestCreate files a new certification application.
func CertificationRequestCreate(svc certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}

		var payload certificationRequestCreate
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.CreateRequest(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toCertificationRequestView(request))
	}
}

// CertificationRequestList lists requests filtered by status, pending by
// default, oldest first.
func CertificationRequestList(svc certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}

		raw := validators.QueryString(r, "status", string(enums.RequestStatusPending))
		status, err := enums.ParseRequestStatus(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").WithField("status"))
			return
		}

		rows, err := svc.ListRequests(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]certificationRequestView, 0, len(rows))
		for i := range rows {
			views = append(views, toCertificationRequestView(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// CertificationRequestApprove approves a pending request. When the body
// carries a txHash the proof-carrying path is taken and a certification
// record is issued for the grant.
func CertificationRequestApprove(svc certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}

		requestID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid request id").WithField("id"))
			return
		}

		var payload certificationRequestReview
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expiry, err := payload.expiry()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var request *models.CertificationRequest
		if txHash := strings.TrimSpace(payload.TxHash); txHash != "" {
			request, err = svc.ApproveWithProof(r.Context(), certifications.ApproveWithProofInput{
				WalletAddress: payload.WalletAddress,
				RequestID:     requestID,
				TxHash:        txHash,
				ExpiryDate:    expiry,
			})
		} else {
			request, err = svc.Approve(r.Context(), certifications.ApproveInput{
				WalletAddress: payload.WalletAddress,
				RequestID:     requestID,
				ExpiryDate:    expiry,
			})
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCertificationRequestView(request))
	}
}

// CertificationRequestReject rejects a pending request with a reason.
func CertificationRequestReject(svc certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}

		requestID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid request id").WithField("id"))
			return
		}

		var payload certificationRequestReview
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Reject(r.Context(), certifications.RejectInput{
			WalletAddress: payload.WalletAddress,
			RequestID:     requestID,
			Reason:        payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCertificationRequestView(request))
	}
}
