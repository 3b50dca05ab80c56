package cli

import (
	"context"
	"fmt"

	"github.com/northpalm/sales-ledger-api/infrastructure/database"
	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/spf13/cobra"
)

// RootOptions guarda as flags globais. Driver e DSN sobrescrevem a configuração do ambiente.
type RootOptions struct {
	Driver   string
	DSN      string
	LogLevel string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Administração do livro de vendas diárias",
		Long:  "Comandos de manutenção do banco: criação do schema, carga inicial e cadastro de usuários.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Setup(opts.LogLevel)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "driver do banco (postgres|sqlite3)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "string de conexão; exige --driver")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "nível de log")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewCreateUserCommand(opts))

	return cmd
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.DSN != "" && opts.Driver == "" {
		return nil, fmt.Errorf("--dsn exige --driver")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	if opts.Driver != "" {
		cfg.Database.Driver = opts.Driver
	}
	if opts.DSN != "" {
		cfg.Database.DSN = opts.DSN
	}

	return cfg, nil
}

// openConnection carrega a configuração e conecta ao banco com o schema aplicado
func openConnection(ctx context.Context, opts *RootOptions) (*config.Config, *database.Connection, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	conn, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao conectar ao banco (%s): %w", cfg.Database.Driver, err)
	}

	if err := conn.Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return cfg, conn, nil
}
