package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agenthands/callrank/internal/core"
	"github.com/agenthands/callrank/internal/core/source"
	"github.com/agenthands/callrank/internal/core/strategy"
	"github.com/agenthands/callrank/internal/core/summary"
	"github.com/agenthands/callrank/internal/llm"
)

type rankOptions struct {
	target       string
	strategy     string
	profile      int
	summarize    bool
	summaryLimit int
	format       string
}

func newRankCmd(global *globalOptions) *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank <graph.json>",
		Short: "Rank the call edges of a call graph for a target service",
		Long: `Rank every call of a call graph document by its impact on the target
service. Calls that cannot reach the target are listed last with score -1.

Examples:
  callrank rank release.json --target checkout
  callrank rank release.json --target checkout --strategy ResponseTimeAnalysis
  callrank rank release.json --target checkout --profile 3 --format text
  callrank rank release.json --target checkout --summarize`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "Target service the ranking is computed for")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "Ranking strategy (default from config)")
	cmd.Flags().IntVar(&opts.profile, "profile", -1, "Weight profile 0-5 (default from config)")
	cmd.Flags().BoolVar(&opts.summarize, "summarize", false, "Ask the configured LLM to summarize the ranking")
	cmd.Flags().IntVar(&opts.summaryLimit, "summary-limit", 0, "Number of top calls handed to the LLM")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format (json, text)")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runRank(cmd *cobra.Command, global *globalOptions, opts *rankOptions, path string) error {
	cfg, logger, err := global.load(cmd)
	if err != nil {
		return err
	}

	doc, err := source.ReadFile(path)
	if err != nil {
		return err
	}

	var summarizer *summary.Summarizer
	if opts.summarize {
		client, err := llm.NewClient(cmd.Context(), cfg.LLM, logger)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		summarizer = summary.NewSummarizer(client, cfg.Summary, logger)
	}

	analyzer, err := core.NewAnalyzer(cfg.Ranking, nil, summarizer, logger)
	if err != nil {
		return err
	}

	rankOpts := core.Options{Summarize: opts.summarize, SummaryLimit: opts.summaryLimit}
	if opts.strategy != "" {
		kind, err := strategy.Parse(opts.strategy)
		if err != nil {
			return err
		}
		rankOpts.Strategy = &kind
	}
	if opts.profile >= 0 {
		rankOpts.WeightProfile = &opts.profile
	}

	report, err := analyzer.RankDocument(cmd.Context(), doc, opts.target, rankOpts)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text":
		return writeReport(cmd.OutOrStdout(), report)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func writeReport(w io.Writer, report *core.Report) error {
	if _, err := fmt.Fprintf(w, "Ranking for %s (%s, run %s)\n", report.TargetService, report.Strategy, report.RunID); err != nil {
		return err
	}
	for i, s := range report.Scores {
		if _, err := fmt.Fprintf(w, "%3d. %-8s %8g  %s\n", i+1, s.Level, s.Score, s.Call); err != nil {
			return err
		}
	}
	if report.Summary != "" {
		if _, err := fmt.Fprintf(w, "\nSummary:\n%s\n", report.Summary); err != nil {
			return err
		}
	}
	if report.SummaryError != "" {
		if _, err := fmt.Fprintf(w, "\nSummary failed: %s\n", report.SummaryError); err != nil {
			return err
		}
	}
	return nil
}
