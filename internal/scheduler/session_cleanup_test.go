package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/internal/scheduler/mocks"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newCleanupService(t *testing.T, enabled bool) (*SessionCleanupService, *mocks.MockSessionCleaner) {
	t.Helper()
	log.SetupTestLogger()

	ctrl := gomock.NewController(t)
	cleaner := mocks.NewMockSessionCleaner(ctrl)

	cfg := &config.Config{}
	cfg.SessionCleanup.CronSchedule = "0 4 * * *"
	cfg.SessionCleanup.Enabled = enabled

	return NewSessionCleanupService(cleaner, cfg), cleaner
}

func TestSessionCleanupService_cleanup(t *testing.T) {
	t.Run("Registra quantidade removida", func(t *testing.T) {
		service, cleaner := newCleanupService(t, true)
		cleaner.EXPECT().CleanupSessions(gomock.Any()).Return(int64(3), nil)

		service.cleanup(context.Background())

		status := service.GetStatus()
		assert.Equal(t, false, status["sync_running"])
		assert.Equal(t, int64(3), status["last_removed"])
		assert.Equal(t, "", status["last_error"])
		assert.False(t, status["last_sync_completed_at"].(time.Time).IsZero())
	})

	t.Run("Guarda o erro da última execução", func(t *testing.T) {
		service, cleaner := newCleanupService(t, true)
		cleaner.EXPECT().CleanupSessions(gomock.Any()).Return(int64(0), errors.New("conexão recusada"))

		service.cleanup(context.Background())

		status := service.GetStatus()
		assert.Equal(t, "conexão recusada", status["last_error"])
		assert.Equal(t, false, status["sync_running"])
	})

	t.Run("Ignora execução concorrente", func(t *testing.T) {
		service, _ := newCleanupService(t, true)
		service.syncRunning = true

		// sem EXPECT: qualquer chamada ao cleaner falha o teste
		service.cleanup(context.Background())

		assert.Equal(t, true, service.GetStatus()["sync_running"])
	})

	t.Run("Execução carrega correlation id", func(t *testing.T) {
		service, cleaner := newCleanupService(t, true)
		cleaner.EXPECT().CleanupSessions(gomock.Any()).DoAndReturn(func(ctx context.Context) (int64, error) {
			assert.NotEmpty(t, log.GetCorrelationID(ctx))
			return 0, nil
		})

		service.cleanup(context.Background())
	})
}

func TestSessionCleanupService_TriggerManualSync(t *testing.T) {
	service, cleaner := newCleanupService(t, true)

	done := make(chan struct{})
	cleaner.EXPECT().CleanupSessions(gomock.Any()).DoAndReturn(func(ctx context.Context) (int64, error) {
		close(done)
		return 1, nil
	})

	service.TriggerManualSync(context.Background())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("limpeza manual não executou")
	}
}

func TestSessionCleanupService_Start(t *testing.T) {
	t.Run("Desabilitado não agenda", func(t *testing.T) {
		service, _ := newCleanupService(t, false)

		require.NoError(t, service.Start(context.Background()))
		assert.Empty(t, service.scheduler.Jobs())
	})

	t.Run("Cron inválido", func(t *testing.T) {
		service, _ := newCleanupService(t, true)
		service.config.CronSchedule = "isto não é cron"

		assert.Error(t, service.Start(context.Background()))
	})

	t.Run("Agenda e para com o contexto", func(t *testing.T) {
		service, _ := newCleanupService(t, true)
		ctx, cancel := context.WithCancel(context.Background())

		require.NoError(t, service.Start(ctx))
		assert.Len(t, service.scheduler.Jobs(), 1)

		cancel()
		assert.Eventually(t, func() bool { return !service.scheduler.IsRunning() }, 2*time.Second, 10*time.Millisecond)
	})
}
