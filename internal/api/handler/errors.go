package handler

import (
	"net/http"

	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/internal/usecases/authenticating"
	"github.com/northpalm/sales-ledger-api/internal/usecases/recording"
	"github.com/northpalm/sales-ledger-api/internal/usecases/summarizing"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/northpalm/sales-ledger-api/pkg/middleware"
	"github.com/pkg/errors"
)

// writeServiceError traduz os erros dos casos de uso para o envelope da API
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		salesErr   *recording.SalesError
		authErr    *authenticating.AuthError
		summaryErr *summarizing.SummaryError

		code    = apiErrors.ErrInternalServer
		message = "Erro interno do servidor"
		details any
	)

	switch {
	case errors.As(err, &salesErr):
		code, message = salesErr.Code, salesErr.Err.Error()
		details = saleDetails(salesErr)
	case errors.As(err, &authErr):
		code, message = authErr.Code, authErr.Err.Error()
		if authErr.Details != "" {
			details = authErr.Details
		}
	case errors.As(err, &summaryErr):
		code, message = summaryErr.Code, summaryErr.Err.Error()
		if summaryErr.Details != "" {
			details = summaryErr.Details
		}
	}

	logger := log.ForContext(r.Context()).WithError(err)
	if apiErrors.StatusFor(code) >= http.StatusInternalServerError {
		logger.Error("Erro ao processar requisição")
		apiErrors.WriteError(w, code, "Erro interno do servidor", nil)
		return
	}

	logger.WithField("code", code).Debug("Requisição rejeitada")
	apiErrors.WriteError(w, code, message, details)
}

func saleDetails(err *recording.SalesError) any {
	if err.Code == apiErrors.ErrSaleDuplicate && err.SaleID != 0 {
		return map[string]any{
			"existing_id": err.SaleID,
			"message":     err.Details,
		}
	}
	if err.Details == "" {
		return nil
	}
	return err.Details
}

// actorFromRequest resolve o usuário autenticado colocado no contexto pelo AuthMiddleware
func actorFromRequest(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
		return domain.Actor{}, false
	}
	return claims.Actor(), true
}
