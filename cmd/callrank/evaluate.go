package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/callrank/internal/core/evaluation"
	"github.com/agenthands/callrank/internal/core/source"
)

type evaluateOptions struct {
	target  string
	cutoffs []int
	all     bool
}

func newEvaluateCmd(global *globalOptions) *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate <graph.json> <relevance.csv>",
		Short: "Compare all ranking strategies against graded relevance",
		Long: `Rank the call graph with every strategy and score each ranking with NDCG
against a relevance CSV (source,target,relevance) whose source and target
columns are endpoint ids of the form service/version/endpoint.

Examples:
  callrank evaluate release.json grades.csv --target checkout
  callrank evaluate release.json grades.csv --target checkout --n 1,3
  callrank evaluate release.json grades.csv --target checkout --all`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, global, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "Target service the rankings are computed for")
	cmd.Flags().IntSliceVar(&opts.cutoffs, "n", []int{3, 5, 7, 10}, "NDCG cutoffs")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Evaluate whole rankings instead of cutoffs")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runEvaluate(cmd *cobra.Command, global *globalOptions, opts *evaluateOptions, graphPath, relevancePath string) error {
	cfg, logger, err := global.load(cmd)
	if err != nil {
		return err
	}

	doc, err := source.ReadFile(graphPath)
	if err != nil {
		return err
	}
	graph, err := doc.Graph()
	if err != nil {
		return err
	}

	f, err := os.Open(relevancePath)
	if err != nil {
		return fmt.Errorf("failed to open relevance file: %w", err)
	}
	defer f.Close()

	rel, err := evaluation.ReadRelevance(f)
	if err != nil {
		return err
	}

	table, err := cfg.Ranking.Table()
	if err != nil {
		return err
	}

	cutoffs := opts.cutoffs
	if opts.all {
		cutoffs = nil
	}

	results, err := evaluation.Compare(graph, opts.target, rel, cutoffs, table, logger)
	if err != nil {
		return err
	}
	return evaluation.WriteResults(cmd.OutOrStdout(), results)
}
