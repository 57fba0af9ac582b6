package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usermanager",
		Short: "Manage departments, roles and users",
		Long: `usermanager serves a small CRUD application for departments, roles and
users on top of a MySQL or SQLite store.

Configuration is read from config.yaml (or $USERMANAGER_CONFIG), a .env file
and USERMANAGER_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		routesCmd(),
		versionCmd(),
	)

	return cmd
}
