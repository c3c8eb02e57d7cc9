package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/callrank/internal/core/strategy"
)

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available ranking strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range strategy.All() {
				marker := ""
				if k == strategy.Default {
					marker = " (default)"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", k, marker); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
