package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "usercrud",
		Short:         "CRUD endpoint for the user table",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd(), newInvokeCmd())
	return root
}
