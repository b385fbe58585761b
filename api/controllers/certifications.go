package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/organictrace/organictrace-backend/api/responses"
	"github.com/organictrace/organictrace-backend/api/validators"
	"github.com/organictrace/organictrace-backend/internal/certifications"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"github.com/organictrace/organictrace-backend/pkg/logger"
)

type certificationView struct {
	ID                  string  `json:"id"`
	CertificationType   string  `json:"certificationType"`
	IssuingBody         string  `json:"issuingBody"`
	CertificationNumber string  `json:"certificationNumber"`
	ValidFrom           string  `json:"validFrom"`
	ValidUntil          string  `json:"validUntil"`
	CertificateURL      *string `json:"certificateUrl,omitempty"`
	Verified            bool    `json:"verified"`
	BlockchainHash      string  `json:"blockchainHash"`
	CreatedAt           string  `json:"createdAt"`
}

func toCertificationView(cert *models.Certification) certificationView {
	return certificationView{
		ID:                  cert.ID.String(),
		CertificationType:   cert.CertificationType,
		IssuingBody:         cert.IssuingBody,
		CertificationNumber: cert.CertificationNumber,
		ValidFrom:           cert.ValidFrom.UTC().Format(dateLayout),
		ValidUntil:          cert.ValidUntil.UTC().Format(dateLayout),
		CertificateURL:      cert.CertificateURL,
		Verified:            cert.Verified,
		BlockchainHash:      cert.BlockchainHash,
		CreatedAt:           cert.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type certificationReviewBody struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	RequestID     string `json:"requestId" validate:"required,uuid"`
	TxHash        string `json:"txHash"`
	ExpiryDate    string `json:"expiryDate"`
	Reason        string `json:"reason"`
}

func (b certificationReviewBody) requestID() (uuid.UUID, error) {
	id, err := uuid.Parse(b.RequestID)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request id").WithField("requestId")
	}
	return id, nil
}

// CertificationApprove is the proof-carrying approval route: the request id
// and transaction hash travel in the body rather than the path.
func CertificationApprove(svc certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}

		var payload certificationReviewBody
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := payload.requestID()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expiry, err := certificationRequestReview{ExpiryDate: payload.ExpiryDate}.expiry()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.ApproveWithProof(r.Context(), certifications.ApproveWithProofInput{
			WalletAddress: payload.WalletAddress,
			RequestID:     requestID,
			TxHash:        payload.TxHash,
			ExpiryDate:    expiry,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toCertificationRequestView(request))
	}
}

// CertificationReject rejects a pending request, addressed by body id.
func CertificationReject(svc certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}

		var payload certificationReviewBody
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := payload.requestID()
		if err != nil {
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

// CertificationList returns the caller's issued certifications.
func CertificationList(svc certifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "certification service unavailable"))
			return
		}

		wallet, err := validators.RequiredQuery(r, "wallet")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListCertifications(r.Context(), wallet)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]certificationView, 0, len(rows))
		for i := range rows {
			views = append(views, toCertificationView(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}
