package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Print the resolved model catalog, for diagnosing routing decisions",
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	_, _, catalog, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing catalog: %w", err)
	}

	for _, m := range catalog.List() {
		fmt.Printf("%-30s endpoints=%-30v max_output_tokens=%d\n", m.ID, m.SupportedEndpoints, m.Capabilities.Limits.MaxOutputTokens)
	}
	return nil
}
