package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/callrank/internal/config"
	"github.com/agenthands/callrank/internal/core/common"
	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/llm"
)

const (
	// Placeholder replaced by the rendered ranking in the prompt.
	Placeholder = "{{ranking}}"

	DefaultLimit = 10

	// NoRankingSummary is returned without asking the LLM when no call was
	// reached from the target service.
	NoRankingSummary = "No call was reached from the target service, nothing to triage."

	defaultPrompt = `The calls of a new microservice release are ranked below by how likely
they are to have introduced a problem, highest first. Each line holds the call,
its score and its severity.

` + Placeholder + `

Write a short triage summary naming the calls to review first and why.
Respond in JSON: {"summary": "..."}`
)

type rankingSummary struct {
	Summary string `json:"summary"`
}

type Summarizer struct {
	LLM     llm.LLMClient
	Prompts config.SummaryPrompts
	Logger  *slog.Logger
}

func NewSummarizer(llmClient llm.LLMClient, prompts config.SummaryPrompts, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		LLM:     llmClient,
		Prompts: prompts,
		Logger:  logger,
	}
}

// SummarizeRanking asks the LLM for a triage summary of the top limit reached
// calls. A limit of 0 uses the configured one.
func (s *Summarizer) SummarizeRanking(ctx context.Context, scores []*model.RankingScore, limit int) (string, error) {
	if limit <= 0 {
		limit = s.Prompts.Limit
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	lines := RenderRanking(scores, limit)
	if lines == "" {
		return NoRankingSummary, nil
	}

	template := s.Prompts.Ranking
	if template == "" {
		template = defaultPrompt
	}
	var prompt string
	if strings.Contains(template, Placeholder) {
		prompt = strings.ReplaceAll(template, Placeholder, lines)
	} else {
		prompt = template + "\n\n" + lines
	}

	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate ranking summary: %w", err)
	}

	result, err := common.ParseJSON[rankingSummary](response)
	if err == nil && result.Summary != "" {
		return result.Summary, nil
	}

	s.Logger.Debug("summary response is not JSON, using raw text", "error", err)
	return strings.TrimSpace(response), nil
}

// RenderRanking lists the first limit reached scores, one per line.
func RenderRanking(scores []*model.RankingScore, limit int) string {
	var sb strings.Builder
	n := 0
	for _, s := range scores {
		if n == limit {
			break
		}
		if !s.Reached() {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d. %s | score %g | %s\n", n, s.Call.String(), s.Score, s.Level)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
