package trace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organictrace/organictrace-backend/pkg/chain"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
)

type trackerReader interface {
	GetProduct(ctx context.Context, productID uint64) (*chain.TrackedProduct, error)
}

type registryReader interface {
	Verify(ctx context.Context, farmer string) (bool, error)
	GetCertification(ctx context.Context, farmer string) (*chain.RegistryCertification, error)
}

type productsFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ProductTrace is the consumer-facing provenance view, assembled from the
// tracker and registry contracts. Addresses are shortened and epochs are
// rendered as calendar dates; this is a display projection, not a raw dump.
type ProductTrace struct {
	ChainProductID uint64         `json:"chainProductId"`
	ProductName    string         `json:"productName"`
	Farmer         string         `json:"farmer"`
	CurrentOwner   string         `json:"currentOwner"`
	CreatedAt      string         `json:"createdAt"`
	Certified      bool           `json:"certified"`
	Certification  *Certification `json:"certification,omitempty"`
	History        []HistoryEntry `json:"history"`
}

// Certification is the display form of the on-chain certification fact.
type Certification struct {
	Body      string `json:"body"`
	GrantedAt string `json:"grantedAt"`
	ExpiresAt string `json:"expiresAt"`
}

// HistoryEntry is one custody event in display form.
type HistoryEntry struct {
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Service projects on-chain product state into display views.
type Service interface {
	// Trace reads provenance by numeric on-chain product id.
	Trace(ctx context.Context, chainProductID uint64) (*ProductTrace, error)
	// TraceByProductID maps an off-chain product uuid to its on-chain id
	// first, then traces it.
	TraceByProductID(ctx context.Context, id uuid.UUID) (*ProductTrace, error)
}

type service struct {
	tracker  trackerReader
	registry registryReader
	products productsFinder
}

// NewService builds the trace projector over the two contract readers.
func NewService(tracker trackerReader, registry registryReader, products productsFinder) (Service, error) {
	if tracker == nil {
		return nil, fmt.Errorf("tracker reader required")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry reader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{tracker: tracker, registry: registry, products: products}, nil
}

func (s *service) Trace(ctx context.Context, chainProductID uint64) (*ProductTrace, error) {
	product, err := s.tracker.GetProduct(ctx, chainProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read product from tracker")
	}
	if product.ID == nil || product.ID.Uint64() == 0 {
		// The contract returns a zeroed struct for unknown ids.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no tracked product with this id")
	}

	view := &ProductTrace{
		ChainProductID: product.ID.Uint64(),
		ProductName:    product.ProductName,
		Farmer:         chain.ShortenAddress(product.Farmer.Hex()),
		CurrentOwner:   chain.ShortenAddress(product.CurrentOwner.Hex()),
		CreatedAt:      chain.FormatEpochDate(product.CreatedAt),
		History:        make([]HistoryEntry, 0, len(product.History)),
	}
	for _, entry := range product.History {
		view.History = append(view.History, HistoryEntry{
			Actor:     chain.ShortenAddress(entry.Actor.Hex()),
			Action:    entry.Action,
			Details:   entry.Details,
			Timestamp: chain.FormatEpochDate(entry.Timestamp),
		})
	}

	// The certification read is an independent call; failure there hides
	// the badge but does not take down the trace.
	certified, err := s.registry.Verify(ctx, product.Farmer.Hex())
	if err != nil {
		return view, nil
	}
	view.Certified = certified
	if !certified {
		return view, nil
	}

	if fact, err := s.registry.GetCertification(ctx, product.Farmer.Hex()); err == nil && fact.Certified {
		view.Certification = &Certification{
			Body:      fact.CertificationBody,
			GrantedAt: chain.FormatEpochDate(fact.GrantedAt),
			ExpiresAt: chain.FormatEpochDate(fact.ExpiryDate),
		}
	}
	return view, nil
}

func (s *service) TraceByProductID(ctx context.Context, id uuid.UUID) (*ProductTrace, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch product")
	}
	if product.ChainProductID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not registered on chain").
			WithHint("only on-chain products can be traced")
	}
	return s.Trace(ctx, *product.ChainProductID)
}
