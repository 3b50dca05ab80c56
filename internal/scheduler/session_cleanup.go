package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/pkg/log"
)

//go:generate mockgen -source=session_cleanup.go -destination=mocks/session_cleaner_mock.go -package=mocks

const JobSessionCleanup = "session-cleanup"

// SessionCleaner remove as sessões vencidas
type SessionCleaner interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

type SessionCleanupConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// SessionCleanupService agenda a limpeza periódica da tabela de sessões
type SessionCleanupService struct {
	scheduler       *gocron.Scheduler
	config          SessionCleanupConfig
	cleaner         SessionCleaner
	syncRunning     bool
	syncMutex       sync.Mutex
	lastStartedAt   time.Time
	lastCompletedAt time.Time
	lastRemoved     int64
	lastError       string
}

func NewSessionCleanupService(cleaner SessionCleaner, appConfig *config.Config) *SessionCleanupService {
	cleanupConfig := SessionCleanupConfig{
		CronSchedule: appConfig.SessionCleanup.CronSchedule,
		SyncEnabled:  appConfig.SessionCleanup.Enabled,
	}

	log.L.WithFields(log.Fields{
		"cron_schedule": cleanupConfig.CronSchedule,
		"sync_enabled":  cleanupConfig.SyncEnabled,
	}).Info("Configuração do agendador de limpeza de sessões carregada")

	return &SessionCleanupService{
		scheduler: gocron.NewScheduler(time.UTC),
		config:    cleanupConfig,
		cleaner:   cleaner,
	}
}

// Start inicia o agendador e o encerra quando o contexto for cancelado
func (s *SessionCleanupService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		log.L.Info("Limpeza de sessões desabilitada por configuração")
		return nil
	}

	log.L.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de limpeza de sessões")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.cleanup(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar limpeza de sessões: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		log.L.Info("Parando agendador de limpeza de sessões")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *SessionCleanupService) cleanup(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		log.L.Info("Limpeza de sessões já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastStartedAt = time.Now()
	s.syncMutex.Unlock()

	ctx, _ = log.WithCorrelationID(ctx)
	logger := log.ForContext(ctx).WithField("job", JobSessionCleanup)

	removed, err := s.cleaner.CleanupSessions(ctx)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	s.syncRunning = false
	s.lastCompletedAt = time.Now()

	if err != nil {
		s.lastError = err.Error()
		logger.WithError(err).Error("Erro na limpeza de sessões")
		return
	}

	s.lastError = ""
	s.lastRemoved = removed
	logger.WithFields(log.Fields{
		"removed":  removed,
		"duration": s.lastCompletedAt.Sub(s.lastStartedAt).String(),
	}).Info("Limpeza de sessões concluída")
}

// TriggerManualSync executa a limpeza fora do agendamento
func (s *SessionCleanupService) TriggerManualSync(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		log.L.Info("Limpeza de sessões já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	log.L.Info("Iniciando limpeza manual de sessões")
	go s.cleanup(context.WithoutCancel(ctx))
}

func (s *SessionCleanupService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"last_sync_started_at":   s.lastStartedAt,
		"last_sync_completed_at": s.lastCompletedAt,
		"last_removed":           s.lastRemoved,
		"last_error":             s.lastError,
	}
}
