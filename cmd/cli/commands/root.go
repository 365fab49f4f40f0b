// Package commands implements the bananagen CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bananagen/bananagen/internal/api/v1/client"
	"github.com/bananagen/bananagen/internal/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
)

// environment variable names
const (
	envServerAddress = "BANANAGEN_SERVER_ADDRESS"
)

var (
	// apiClient is the shared API client instance
	apiClient *client.APIClient
	// serverAddress holds the target API server address
	serverAddress string
)

// initClient initializes the API client
func initClient() error {
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress

	var err error
	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL,
		"Address of the bananagen API server (env: BANANAGEN_SERVER_ADDRESS)")

	RootCmd.AddCommand(tasksCmd)
	RootCmd.AddCommand(accountsCmd)
	RootCmd.AddCommand(modelsCmd)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "bananagen",
	Short: "bananagen CLI - a command line interface for the bananagen API",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if serverAddress == routes.DefaultBaseURL {
			if fromEnv := os.Getenv(envServerAddress); fromEnv != "" {
				serverAddress = fromEnv
			}
		}
		return initClient()
	},
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
