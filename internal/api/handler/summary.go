package handler

import (
	"net/http"
	"time"

	"github.com/northpalm/sales-ledger-api/internal/usecases/summarizing"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
)

// DailySummary agrega por dia e loja entre startDate e endDate, ambos inclusivos
func DailySummary(service summarizing.Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := dateRangeFromQuery(w, r)
		if !ok {
			return
		}

		storeID, err := utils.QueryInt(r, "storeId")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "storeId inválido", nil)
			return
		}

		report, err := service.Daily(r.Context(), start, end, storeID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, report, "")
	}
}

// MonthlySummary agrega por mês. Sem year na query, cobre todos os anos.
func MonthlySummary(service summarizing.Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := utils.QueryInt(r, "year")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "year inválido", nil)
			return
		}

		month, err := utils.QueryInt(r, "month")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "month inválido", nil)
			return
		}

		storeID, err := utils.QueryInt(r, "storeId")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "storeId inválido", nil)
			return
		}

		report, err := service.Monthly(r.Context(), year, month, storeID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, report, "")
	}
}

// YearlySummary agrega por ano. Sem year, cobre todo o histórico.
func YearlySummary(service summarizing.Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := utils.QueryInt(r, "year")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "year inválido", nil)
			return
		}

		storeID, err := utils.QueryInt(r, "storeId")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "storeId inválido", nil)
			return
		}

		report, err := service.Yearly(r.Context(), year, storeID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, report, "")
	}
}

func Dashboard(service summarizing.Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := dateRangeFromQuery(w, r)
		if !ok {
			return
		}

		dashboard, err := service.Dashboard(r.Context(), start, end)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, dashboard, "")
	}
}

func dateRangeFromQuery(w http.ResponseWriter, r *http.Request) (*time.Time, *time.Time, bool) {
	query := r.URL.Query()

	start, err := utils.ParseDate(query.Get("startDate"))
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "startDate inválido, use YYYY-MM-DD", nil)
		return nil, nil, false
	}

	end, err := utils.ParseDate(query.Get("endDate"))
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "endDate inválido, use YYYY-MM-DD", nil)
		return nil, nil, false
	}

	return start, end, true
}
