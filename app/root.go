// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deploypanel",
	Short: "DeployPanel is a web-based administration console for deployments",
	Long: `DeployPanel is a web-based administration console for managing
clients, users, roles, hosts, application versions, and deployments.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
