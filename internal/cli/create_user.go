package cli

import (
	"fmt"

	"github.com/northpalm/sales-ledger-api/infrastructure/repository"
	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/internal/usecases/authenticating"
	"github.com/spf13/cobra"
)

type createUserOptions struct {
	Username string
	Name     string
	Password string
	Role     string
}

func NewCreateUserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &createUserOptions{}

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Cadastra um usuário",
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

			user, err := authenticator.CreateUser(ctx, opts.Username, opts.Name, opts.Password, domain.Role(opts.Role))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "usuário criado: %s (id %d, %s)\n", user.Username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "nome de login")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "nome de exibição")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "senha (mínimo 4 caracteres)")
	cmd.Flags().StringVarP(&opts.Role, "role", "r", string(domain.RoleStaff), "papel (admin|staff)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
