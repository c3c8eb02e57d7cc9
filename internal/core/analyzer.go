package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/callrank/internal/config"
	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/core/ranking"
	"github.com/agenthands/callrank/internal/core/source"
	"github.com/agenthands/callrank/internal/core/strategy"
	"github.com/agenthands/callrank/internal/core/summary"
	"github.com/agenthands/callrank/internal/core/weights"
)

var (
	ErrNoStore      = errors.New("no scenario store configured")
	ErrNoSummarizer = errors.New("no summarizer configured")
)

// CustomProfile is reported when the weights come from an explicit table.
const CustomProfile = -1

// Options override the configured ranking for one request.
type Options struct {
	Strategy      *strategy.Kind
	WeightProfile *int
	Summarize     bool
	SummaryLimit  int
}

// Report is the outcome of one ranking run.
type Report struct {
	RunID         string                `json:"run_id"`
	TargetService string                `json:"target_service"`
	Strategy      strategy.Kind         `json:"strategy"`
	WeightProfile int                   `json:"weight_profile"`
	Scores        []*model.RankingScore `json:"scores"`
	Summary       string                `json:"summary,omitempty"`
	SummaryError  string                `json:"summary_error,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// Analyzer ties ranking, the scenario store and the summarizer together.
// Store and Summarizer are optional.
type Analyzer struct {
	Store      *source.Store
	Summarizer *summary.Summarizer
	Logger     *slog.Logger

	Strategy      strategy.Kind
	Weights       weights.Table
	WeightProfile int
	Penalty       float64

	NewRunID func() string
	Now      func() time.Time
}

func NewAnalyzer(cfg config.RankingConfig, store *source.Store, summarizer *summary.Summarizer, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kind, err := cfg.Kind()
	if err != nil {
		return nil, err
	}
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}

	profile := cfg.WeightProfile
	if cfg.Weights != nil {
		profile = CustomProfile
	}

	return &Analyzer{
		Store:         store,
		Summarizer:    summarizer,
		Logger:        logger,
		Strategy:      kind,
		Weights:       table,
		WeightProfile: profile,
		Penalty:       cfg.Penalty,
		NewRunID:      uuid.NewString,
		Now:           time.Now,
	}, nil
}

func (a *Analyzer) resolve(opts Options) (strategy.Kind, weights.Table, int, error) {
	kind := a.Strategy
	if opts.Strategy != nil {
		if !opts.Strategy.Valid() {
			return 0, weights.Table{}, 0, fmt.Errorf("%w: %d", strategy.ErrUnknownStrategy, int(*opts.Strategy))
		}
		kind = *opts.Strategy
	}

	if opts.WeightProfile == nil {
		return kind, a.Weights, a.WeightProfile, nil
	}

	table, err := weights.Profile(*opts.WeightProfile)
	if err != nil {
		return 0, weights.Table{}, 0, err
	}
	if a.Penalty > 0 {
		table = table.WithPenalty(a.Penalty)
	}
	return kind, table, *opts.WeightProfile, nil
}

// Rank scores every call of graph for targetService.
func (a *Analyzer) Rank(ctx context.Context, graph *model.Graph, targetService string, opts Options) (*Report, error) {
	kind, table, profile, err := a.resolve(opts)
	if err != nil {
		return nil, err
	}

	runID := a.NewRunID()
	logger := a.Logger.With("run_id", runID)

	scores, err := ranking.NewRanker(kind, table, logger).Rank(graph, targetService)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:         runID,
		TargetService: targetService,
		Strategy:      kind,
		WeightProfile: profile,
		Scores:        scores,
		CreatedAt:     a.Now().UTC(),
	}

	if opts.Summarize {
		if a.Summarizer == nil {
			return nil, ErrNoSummarizer
		}
		text, err := a.Summarizer.SummarizeRanking(ctx, scores, opts.SummaryLimit)
		if err != nil {
			// the ranking stays usable without its summary
			logger.Warn("failed to summarize ranking", "error", err)
			report.SummaryError = err.Error()
		} else {
			report.Summary = text
		}
	}

	logger.Info("ranked calls",
		"target", targetService,
		"strategy", kind.String(),
		"scores", len(scores))
	return report, nil
}

// RankDocument converts doc and ranks it.
func (a *Analyzer) RankDocument(ctx context.Context, doc *source.Document, targetService string, opts Options) (*Report, error) {
	graph, err := doc.Graph()
	if err != nil {
		return nil, err
	}
	return a.Rank(ctx, graph, targetService, opts)
}

// RankStored ranks a scenario previously saved in the store.
func (a *Analyzer) RankStored(ctx context.Context, scenario, targetService string, opts Options) (*Report, error) {
	if a.Store == nil {
		return nil, ErrNoStore
	}
	doc, err := a.Store.Load(ctx, scenario)
	if err != nil {
		return nil, err
	}
	return a.RankDocument(ctx, doc, targetService, opts)
}

func (a *Analyzer) SaveScenario(ctx context.Context, scenario string, doc *source.Document) error {
	if a.Store == nil {
		return ErrNoStore
	}
	return a.Store.Save(ctx, scenario, doc)
}

func (a *Analyzer) Scenarios(ctx context.Context) ([]string, error) {
	if a.Store == nil {
		return nil, ErrNoStore
	}
	return a.Store.List(ctx)
}

// BuildIndices prepares the store, a no-op without one.
func (a *Analyzer) BuildIndices(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Driver.BuildIndices(ctx)
}
