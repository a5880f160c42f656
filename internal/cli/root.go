// Package cli holds the fulfillment command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "fulfillment",
		Short:         "Order fulfillment service",
		Long:          "Runs the order fulfillment HTTP API and the customer notification worker.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newNotifyCmd(opts))
	cmd.AddCommand(newCreateAdminCmd(opts))
	return cmd
}

func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}
