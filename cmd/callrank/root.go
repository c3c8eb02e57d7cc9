package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/callrank/internal/config"
	"github.com/agenthands/callrank/internal/logging"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "callrank",
		Short: "Rank the call edges of a microservice release by impact",
		Long: `callrank builds impact trees over a call graph that compares two releases
of a microservice system and ranks every call edge by how likely it is to
affect a target service.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath(), "Path to the TOML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	cmd.AddCommand(
		newRankCmd(opts),
		newEvaluateCmd(opts),
		newScenarioCmd(opts),
		newStrategiesCmd(),
	)
	return cmd
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.toml"
}

// load resolves the config and a logger writing to stderr.
func (o *globalOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.ApplyEnv()
	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, logging.New(cfg.Logging, cmd.ErrOrStderr()), nil
}
