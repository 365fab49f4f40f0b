package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the provider's image models",
	RunE: func(_ *cobra.Command, _ []string) error {
		list, err := apiClient.ListModels(context.Background())
		if err != nil {
			return fmt.Errorf("error listing models: %w", err)
		}
		return printJSON(list)
	},
}
