package server

import (
	"context"
	"log/slog"

	"github.com/agenthands/callrank/internal/config"
	"github.com/agenthands/callrank/internal/core"
	"github.com/agenthands/callrank/internal/core/source"
	"github.com/agenthands/callrank/internal/core/summary"
	"github.com/agenthands/callrank/internal/driver"
	"github.com/agenthands/callrank/internal/llm"
)

// NewAnalyzer wires the analyzer from cfg. Memgraph and the LLM are optional:
// when they cannot be set up the analyzer runs without a store or summarizer.
// The returned func releases the Memgraph connection.
func NewAnalyzer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*core.Analyzer, func(), error) {
	closer := func() {}

	var store *source.Store
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			logger.Warn("scenario store disabled", "error", err)
		} else {
			store = source.NewStore(d, logger)
			closer = func() {
				if err := d.Close(context.Background()); err != nil {
					logger.Warn("failed to close memgraph driver", "error", err)
				}
			}
		}
	}

	var summarizer *summary.Summarizer
	if cfg.LLM.Provider != "" {
		client, err := llm.NewClient(ctx, cfg.LLM, logger)
		if err != nil {
			logger.Warn("ranking summaries disabled", "error", err)
		} else {
			summarizer = summary.NewSummarizer(client, cfg.Summary, logger)
		}
	}

	analyzer, err := core.NewAnalyzer(cfg.Ranking, store, summarizer, logger)
	if err != nil {
		closer()
		return nil, nil, err
	}

	if err := analyzer.BuildIndices(ctx); err != nil {
		logger.Warn("failed to build indices", "error", err)
	}
	return analyzer, closer, nil
}
