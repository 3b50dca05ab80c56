package main

import (
	"context"

	"github.com/northpalm/sales-ledger-api/infrastructure/database"
	"github.com/northpalm/sales-ledger-api/infrastructure/repository"
	"github.com/northpalm/sales-ledger-api/internal/api"
	"github.com/northpalm/sales-ledger-api/internal/api/handler"
	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/internal/scheduler"
	"github.com/northpalm/sales-ledger-api/internal/usecases/authenticating"
	"github.com/northpalm/sales-ledger-api/internal/usecases/recording"
	"github.com/northpalm/sales-ledger-api/internal/usecases/summarizing"
	"github.com/northpalm/sales-ledger-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.L.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)

	if err := cfg.ResolveSecretKey(); err != nil {
		log.L.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := dbconn(ctx, cfg)
	defer conn.Close()

	saleRepo := repository.NewSaleRepository(conn)
	storeRepo := repository.NewStoreRepository(conn)
	userRepo := repository.NewUserRepository(conn)
	sessionRepo := repository.NewSessionRepository(conn)

	authenticator := authenticating.NewService(userRepo, sessionRepo, cfg)
	recorder := recording.NewService(saleRepo, storeRepo)
	summarizer := summarizing.NewService(saleRepo, storeRepo, cfg.Dashboard.DefaultDays)

	sessionCleanupService := scheduler.NewSessionCleanupService(authenticator, cfg)
	if err := sessionCleanupService.Start(ctx); err != nil {
		log.L.WithError(err).Error("Erro ao iniciar o agendador de limpeza de sessões")
	}

	server, err := api.New(
		cfg,
		conn,
		recorder,
		summarizer,
		authenticator,
		handler.CronJobServices{
			scheduler.JobSessionCleanup: sessionCleanupService,
		},
	)
	if err != nil {
		log.L.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		log.L.Error(err)
	}
}

// dbconn abre a conexão e aplica o schema quando DATABASE_AUTO_MIGRATE estiver ligado
func dbconn(ctx context.Context, cfg *config.Config) *database.Connection {
	conn, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.L.WithError(err).Fatalf("Erro ao conectar ao banco (%s)", cfg.Database.Driver)
	}

	if cfg.Database.AutoMigrate {
		if err := conn.Migrate(ctx); err != nil {
			log.L.WithError(err).Fatal("Erro ao aplicar schema")
		}
	}

	log.L.Infof("Conexão com o banco (%s) estabelecida com sucesso", conn.Driver())
	return conn
}
