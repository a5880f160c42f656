package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/spf13/cobra"
)

// newCreateAdminCmd registers an admin account. The HTTP API only creates
// customers.
func newCreateAdminCmd(opts *rootOptions) *cobra.Command {
	var emailAddr, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := createAdmin(cmd.Context(), opts.configPath, emailAddr, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", emailAddr, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&emailAddr, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, configPath, emailAddr, password string) (id string, err error) {
	rt, err := bootstrap(ctx, configPath)
	if err != nil {
		return "", err
	}
	defer func() {
		err = errors.Join(err, rt.close())
	}()

	b := openBus(rt)
	a, err := newCommandHandler(rt, b.publisher).Register(ctx, command.Register{
		Email:    emailAddr,
		Password: password,
		Role:     account.RoleAdmin,
	})
	if err != nil {
		return "", err
	}
	return string(a.ID()), nil
}
