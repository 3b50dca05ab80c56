package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/northpalm/sales-ledger-api/internal/usecases/exporting"
	"github.com/northpalm/sales-ledger-api/internal/usecases/recording"
	"github.com/northpalm/sales-ledger-api/pkg/log"
)

// ExportSales devolve a listagem filtrada como planilha xlsx
func ExportSales(service recording.Recorder) http.HandlerFunc {
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

		f, err := exporting.SalesWorkbook(sales)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", exporting.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporting.FileName(time.Now())))

		if err := f.Write(w); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao enviar planilha")
		}
	}
}
