package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/organictrace/organictrace-backend/internal/identity"
	"github.com/organictrace/organictrace-backend/pkg/config"
	"github.com/organictrace/organictrace-backend/pkg/db/models"
	"github.com/organictrace/organictrace-backend/pkg/enums"
	"github.com/organictrace/organictrace-backend/pkg/logger"
	"github.com/organictrace/organictrace-backend/pkg/metrics"
)

type stubIdentity struct{}

func (stubIdentity) Resolve(ctx context.Context, wallet string) (*models.Profile, error) {
	return &models.Profile{ID: uuid.New(), WalletAddress: wallet, FullName: "Test", Role: enums.ProfileRoleFarmer}, nil
}

func (stubIdentity) Register(ctx context.Context, input identity.RegisterInput) (*models.Profile, error) {
	return &models.Profile{ID: uuid.New(), WalletAddress: input.WalletAddress, FullName: input.FullName, Role: input.Role}, nil
}

func testRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "dev"

	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Metrics:  metrics.NewHTTPMetrics(nil),
		Identity: stubIdentity{},
	})
}

func TestHealthLiveRoute(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if env := rec.Header().Get("X-OrganicTrace-Env"); env != "dev" {
		t.Fatalf("expected env header, got %q", env)
	}
}

func TestHealthReadyWithoutDependencies(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestProfilesRouteWired(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/me?wallet=0xabc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope")
	}
}

func TestUnwiredServiceReturns500NotPanic(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?wallet=0xabc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unwired service, got %d", rec.Code)
	}
}
