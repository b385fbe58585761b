package controllers

import (
	"net/http"

	"github.com/organictrace/organictrace-backend/api/responses"
	"github.com/organictrace/organictrace-backend/pkg/config"
	"github.com/organictrace/organictrace-backend/pkg/db"
	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
	"github.com/organictrace/organictrace-backend/pkg/logger"
	pkgredis "github.com/organictrace/organictrace-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OrganicTrace-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when the datastore and redis answer a
// ping. The chain RPC is deliberately excluded: trace reads degrade per
// request instead of taking the whole API out of rotation.
func HealthReady(cfg *config.Config, database db.Pinger, cache pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OrganicTrace-Env", cfg.App.Env)

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
