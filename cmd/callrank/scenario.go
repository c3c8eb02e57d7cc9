package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/agenthands/callrank/internal/config"
	"github.com/agenthands/callrank/internal/core/source"
	"github.com/agenthands/callrank/internal/driver"
)

func newScenarioCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Manage call graph scenarios stored in Memgraph",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "import <name> <graph.json>",
			Short: "Store a call graph document as a named scenario",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := source.ReadFile(args[1])
				if err != nil {
					return err
				}
				return withStore(cmd, global, func(store *source.Store) error {
					if err := store.Save(cmd.Context(), args[0], doc); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "saved scenario %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "export <name>",
			Short: "Print a stored scenario as a call graph document",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, global, func(store *source.Store) error {
					doc, err := store.Load(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return doc.Encode(cmd.OutOrStdout())
				})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored scenarios",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd, global, func(store *source.Store) error {
					scenarios, err := store.List(cmd.Context())
					if err != nil {
						return err
					}
					for _, s := range scenarios {
						fmt.Fprintln(cmd.OutOrStdout(), s)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func withStore(cmd *cobra.Command, global *globalOptions, fn func(*source.Store) error) error {
	cfg, logger, err := global.load(cmd)
	if err != nil {
		return err
	}

	d, err := connect(cmd.Context(), cfg.Memgraph, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(context.Background()); err != nil {
			logger.Warn("failed to close memgraph driver", "error", err)
		}
	}()

	if err := d.BuildIndices(cmd.Context()); err != nil {
		return err
	}
	return fn(source.NewStore(d, logger))
}

func connect(ctx context.Context, cfg config.MemgraphConfig, logger *slog.Logger) (*driver.MemgraphDriver, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("no memgraph uri configured")
	}
	return driver.NewMemgraphDriver(ctx, cfg.URI, cfg.User, cfg.Password, logger)
}
