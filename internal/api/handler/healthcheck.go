package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthcheckHandler(db Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.ForContext(r.Context()).WithError(err).Warn("error responding to healthcheck")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Banco de dados indisponível", nil)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		}, "")
	})
}
