package llm

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("llm returned no content")

// LLMClient sends a single prompt and returns the text of the answer.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	defaultMaxTokens = 1000

	systemPrompt = "You assist engineers triaging releases of microservice architectures. " +
		"Answer concisely and only with the requested format."
)
