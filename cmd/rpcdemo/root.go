package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rpcdemo",
		Short:        "Typed request validation and dispatch demo",
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd(), newCallCmd())

	return cmd
}
