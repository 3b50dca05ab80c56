package cli

import (
	"fmt"

	"github.com/northpalm/sales-ledger-api/infrastructure/migration"
	"github.com/northpalm/sales-ledger-api/infrastructure/repository"
	"github.com/northpalm/sales-ledger-api/internal/usecases/authenticating"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	AdminPassword string
	StaffPassword string
}

// NewSeedCommand carrega os pontos de venda e os usuários admin e staff1.
// Senhas não informadas são geradas e impressas uma única vez.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carrega pontos de venda e usuários padrão",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, conn, err := openConnection(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer conn.Close()

			authenticator := authenticating.NewService(
				repository.NewUserRepository(conn),
				repository.NewSessionRepository(conn),
				cfg,
			)

			result, err := migration.Seed(ctx,
				repository.NewStoreRepository(conn),
				authenticator,
				migration.DefaultUsers(opts.AdminPassword, opts.StaffPassword),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pontos de venda criados: %d\n", result.StoresCreated)
			for _, user := range result.UsersCreated {
				fmt.Fprintf(out, "usuário criado: %s (%s) senha: %s\n", user.Username, user.Role, user.Password)
			}
			for _, username := range result.UsersSkipped {
				fmt.Fprintf(out, "usuário existente: %s\n", username)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "", "senha do usuário admin")
	cmd.Flags().StringVar(&opts.StaffPassword, "staff-password", "", "senha do usuário staff1")

	return cmd
}
