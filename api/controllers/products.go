package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/organictrace/organictrace-backend/api/responses"
	"github.com/organictrace/organictrace-backend/api/validators"
	"github.com/organictrace/organictrace-backend/internal/products"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"github.com/organictrace/organictrace-backend/pkg/logger"
	"github.com/organictrace/organictrace-backend/pkg/pagination"
)

type productCreateRequest struct {
	WalletAddress    string  `json:"walletAddress" validate:"required"`
	ProductName      string  `json:"productName" validate:"required"`
	ProductSKU       string  `json:"productSku" validate:"required"`
	ProductType      string  `json:"productType" validate:"required"`
	Description      *string `json:"description"`
	FarmingPractices *string `json:"farmingPractices"`
	HarvestDate      string  `json:"harvestDate"`
	CertificationID  string  `json:"certificationId" validate:"required"`
	ChainProductID   *uint64 `json:"chainProductId"`
}

func (r productCreateRequest) toInput() (products.CreateInput, error) {
	certID, err := uuid.Parse(strings.TrimSpace(r.CertificationID))
	if err != nil {
		return products.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid certification id").WithField("certificationId")
	}

	var harvest *time.Time
	if raw := strings.TrimSpace(r.HarvestDate); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return products.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "harvestDate must be YYYY-MM-DD").WithField("harvestDate")
		}
		harvest = &parsed
	}

	return products.CreateInput{
		WalletAddress:    r.WalletAddress,
		ProductName:      r.ProductName,
		ProductSKU:       r.ProductSKU,
		ProductType:      r.ProductType,
		Description:      r.Description,
		FarmingPractices: r.FarmingPractices,
		HarvestDate:      harvest,
		CertificationID:  certID,
		ChainProductID:   r.ChainProductID,
	}, nil
}

type productTransferRequest struct {
	WalletAddress string  `json:"walletAddress" validate:"required"`
	ToWallet      string  `json:"toWallet" validate:"required"`
	Location      *string `json:"location"`
	Notes         *string `json:"notes"`
}

type productView struct {
	ID                  string  `json:"id"`
	FarmerID            string  `json:"farmerId"`
	ProductName         string  `json:"productName"`
	ProductSKU          string  `json:"productSku"`
	ProductType         string  `json:"productType"`
	Description         *string `json:"description,omitempty"`
	FarmingPractices    *string `json:"farmingPractices,omitempty"`
	HarvestDate         *string `json:"harvestDate,omitempty"`
	CertificationID     string  `json:"certificationId"`
	CurrentOwnerID      *string `json:"currentOwnerId,omitempty"`
	CurrentOwnerAddress string  `json:"currentOwnerAddress"`
	ChainProductID      *uint64 `json:"chainProductId,omitempty"`
	Status              string  `json:"status"`
	CreatedAt           string  `json:"createdAt"`
}

func toProductView(product *models.Product) productView {
	view := productView{
		ID:                  product.ID.String(),
		FarmerID:            product.FarmerID.String(),
		ProductName:         product.ProductName,
		ProductSKU:          product.ProductSKU,
		ProductType:         product.ProductType,
		Description:         product.Description,
		FarmingPractices:    product.FarmingPractices,
		CertificationID:     product.CertificationID.String(),
		CurrentOwnerAddress: product.CurrentOwnerAddress,
		ChainProductID:      product.ChainProductID,
		Status:              string(product.Status),
		CreatedAt:           product.CreatedAt.UTC().Format(time.RFC3339),
	}
	if product.HarvestDate != nil {
		date := product.HarvestDate.UTC().Format(dateLayout)
		view.HarvestDate = &date
	}
	if product.CurrentOwnerID != nil {
		id := product.CurrentOwnerID.String()
		view.CurrentOwnerID = &id
	}
	return view
}

type productListView struct {
	Products   []productView `json:"products"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

type movementView struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"productId"`
	FromUserID   string  `json:"fromUserId"`
	ToUserID     *string `json:"toUserId,omitempty"`
	MovementType string  `json:"movementType"`
	Location     *string `json:"location,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

func toMovementView(movement *models.ProductMovement) movementView {
	view := movementView{
		ID:           movement.ID.String(),
		ProductID:    movement.ProductID.String(),
		FromUserID:   movement.FromUserID.String(),
		MovementType: string(movement.MovementType),
		Location:     movement.Location,
		Notes:        movement.Notes,
		CreatedAt:    movement.CreatedAt.UTC().Format(time.RFC3339),
	}
	if movement.ToUserID != nil {
		id := movement.ToUserID.String()
		view.ToUserID = &id
	}
	return view
}

func productIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id").WithField("id")
	}
	return id, nil
}

// ProductCreate registers a product for a certified farmer.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload productCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toProductView(product))
	}
}

// ProductList returns products currently held by the caller.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		wallet, err := validators.RequiredQuery(r, "wallet")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := pagination.Params{Cursor: validators.QueryString(r, "cursor", "")}
		if raw := validators.QueryString(r, "limit", ""); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "limit must be a number").WithField("limit"))
				return
			}
			page.Limit = limit
		}

		rows, next, err := svc.ListOwned(r.Context(), wallet, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]productView, 0, len(rows))
		for i := range rows {
			views = append(views, toProductView(&rows[i]))
		}
		responses.WriteSuccess(w, productListView{Products: views, NextCursor: next})
	}
}

// ProductGet returns one product by id.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductView(product))
	}
}

// ProductMovements returns the custody trail for a product, oldest first.
func ProductMovements(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Movements(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]movementView, 0, len(rows))
		for i := range rows {
			views = append(views, toMovementView(&rows[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// ProductTransfer hands custody to another wallet.
func ProductTransfer(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Transfer(r.Context(), products.TransferInput{
			WalletAddress: payload.WalletAddress,
			ProductID:     id,
			ToWallet:      payload.ToWallet,
			Location:      payload.Location,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductView(product))
	}
}
