package handler

import (
	"io"
	"net/http"

	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/internal/usecases/recording"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
	"github.com/pkg/errors"
)

func ListStores(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stores, err := service.ListStores(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		if stores == nil {
			stores = []*domain.Store{}
		}
		utils.WriteSuccess(w, http.StatusOK, stores, "")
	}
}

// ListSales aceita os filtros startDate, endDate, storeId e isClosed
func ListSales(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, ok := saleFilterFromQuery(w, r)
		if !ok {
			return
		}

		sales, err := service.ListSales(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		if sales == nil {
			sales = []*domain.Sale{}
		}
		utils.WriteSuccess(w, http.StatusOK, sales, "")
	}
}

func GetSale(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := saleIDFromPath(w, r)
		if !ok {
			return
		}

		sale, err := service.GetSale(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, sale, "")
	}
}

func CreateSale(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(w, r)
		if !ok {
			return
		}

		var req domain.CreateSaleRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		sale, err := service.CreateSale(r.Context(), actor, req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusCreated, sale, "Lançamento registrado")
	}
}

func UpdateSale(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(w, r)
		if !ok {
			return
		}

		id, ok := saleIDFromPath(w, r)
		if !ok {
			return
		}

		var req domain.UpdateSaleRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		sale, err := service.UpdateSale(r.Context(), actor, id, req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, sale, "Lançamento atualizado")
	}
}

func DeleteSale(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(w, r)
		if !ok {
			return
		}

		id, ok := saleIDFromPath(w, r)
		if !ok {
			return
		}

		if err := service.DeleteSale(r.Context(), actor, id); err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, nil, "Lançamento excluído")
	}
}

func CloseSale(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(w, r)
		if !ok {
			return
		}

		id, ok := saleIDFromPath(w, r)
		if !ok {
			return
		}

		sale, err := service.CloseSale(r.Context(), actor, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, sale, "Lançamento fechado")
	}
}

// ReopenSale aceita corpo vazio para que a falta de motivo vire SALE_005 e não erro de formato
func ReopenSale(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(w, r)
		if !ok {
			return
		}

		id, ok := saleIDFromPath(w, r)
		if !ok {
			return
		}

		var req domain.ReopenSaleRequest
		if err := utils.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		sale, err := service.ReopenSale(r.Context(), actor, id, req.Reason)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, sale, "Lançamento reaberto")
	}
}

func GetSaleHistory(service recording.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := saleIDFromPath(w, r)
		if !ok {
			return
		}

		entries, err := service.ListHistory(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		if entries == nil {
			entries = []*domain.ClosingHistoryEntry{}
		}
		utils.WriteSuccess(w, http.StatusOK, entries, "")
	}
}

func saleIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := utils.PathID(r)
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "ID do lançamento inválido", nil)
	}
	return id, ok
}

func saleFilterFromQuery(w http.ResponseWriter, r *http.Request) (domain.SaleFilter, bool) {
	var (
		filter domain.SaleFilter
		err    error
	)

	query := r.URL.Query()

	if filter.StartDate, err = utils.ParseDate(query.Get("startDate")); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "startDate inválido, use YYYY-MM-DD", nil)
		return filter, false
	}

	if filter.EndDate, err = utils.ParseDate(query.Get("endDate")); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "endDate inválido, use YYYY-MM-DD", nil)
		return filter, false
	}

	if filter.StoreID, err = utils.QueryInt(r, "storeId"); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "storeId inválido", nil)
		return filter, false
	}

	if filter.IsClosed, err = utils.QueryBool(r, "isClosed"); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "isClosed inválido", nil)
		return filter, false
	}

	return filter, true
}
