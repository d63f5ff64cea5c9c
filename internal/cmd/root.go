// Package cmd implements the CLI of the application.
//
// migrate - Create or update the database schema manually
// serve   - The main bot service entry point
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var cfgFile string

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "xban",
	Short: "Cross-guild ban bot for discord",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	setupCLI()

	if errExecute := rootCmd.Execute(); errExecute != nil {
		os.Exit(1)
	}
}

func setupCLI() {
	if BuildVersion == "" {
		BuildVersion = "master"
	}

	rootCmd.Version = BuildVersion
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default searches $HOME and the working directory for xban.yml)")
}
