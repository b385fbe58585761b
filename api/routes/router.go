package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/organictrace/organictrace-backend/api/controllers"
	"github.com/organictrace/organictrace-backend/api/middleware"
	"github.com/organictrace/organictrace-backend/internal/certifications"
	"github.com/organictrace/organictrace-backend/internal/identity"
	"github.com/organictrace/organictrace-backend/internal/products"
	"github.com/organictrace/organictrace-backend/internal/trace"
	"github.com/organictrace/organictrace-backend/pkg/config"
	"github.com/organictrace/organictrace-backend/pkg/db"
	"github.com/organictrace/organictrace-backend/pkg/logger"
	"github.com/organictrace/organictrace-backend/pkg/metrics"
	pkgredis "github.com/organictrace/organictrace-backend/pkg/redis"
)

type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *pkgredis.Client
	Metrics *metrics.HTTPMetrics

	Identity       identity.Service
	Certifications certifications.Service
	Products       products.Service
	Trace          trace.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.WalletContext(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var idempotencyStore pkgredis.IdempotencyStore
	var cachePinger pkgredis.Pinger
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		cachePinger = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cachePinger, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/auth/register", controllers.AuthRegister(deps.Identity, logg))
		r.Get("/profiles/me", controllers.ProfileMe(deps.Identity, logg))

		r.Route("/certification-requests", func(r chi.Router) {
			r.Post("/", controllers.CertificationRequestCreate(deps.Certifications, logg))
			r.Get("/", controllers.CertificationRequestList(deps.Certifications, logg))
			r.Post("/{id}/approve", controllers.CertificationRequestApprove(deps.Certifications, logg))
			r.Post("/{id}/reject", controllers.CertificationRequestReject(deps.Certifications, logg))
		})

		r.Route("/certifications", func(r chi.Router) {
			r.Get("/", controllers.CertificationList(deps.Certifications, logg))
			r.Post("/approve", controllers.CertificationApprove(deps.Certifications, logg))
			r.Post("/reject", controllers.CertificationReject(deps.Certifications, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{id}", controllers.ProductGet(deps.Products, logg))
			r.Get("/{id}/movements", controllers.ProductMovements(deps.Products, logg))
			r.Post("/{id}/transfer", controllers.ProductTransfer(deps.Products, logg))
		})

		r.Get("/trace/{id}", controllers.ProductTrace(deps.Trace, logg))
	})

	return r
}
