package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/julienschmidt/httprouter"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
)

// CronJob é um job agendado que também pode ser disparado manualmente
type CronJob interface {
	TriggerManualSync(ctx context.Context)
	GetStatus() map[string]any
}

// CronJobServices indexa os jobs pelo tipo usado na rota
type CronJobServices map[string]CronJob

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")

		job, exists := services[cronType]
		if !exists || job == nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido", map[string]any{
				"accepted": services.types(),
			})
			return
		}

		log.ForContext(r.Context()).WithField("job", cronType).Info("Disparo manual de cron job")
		job.TriggerManualSync(r.Context())

		utils.WriteSuccess(w, http.StatusAccepted, map[string]string{"type": cronType}, "Cron job iniciada com sucesso")
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]any, len(services))
		for name, job := range services {
			if job != nil {
				status[name] = job.GetStatus()
			}
		}

		utils.WriteSuccess(w, http.StatusOK, status, "")
	}
}

func (s CronJobServices) types() []string {
	types := make([]string, 0, len(s))
	for name := range s {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
