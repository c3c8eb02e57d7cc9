package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSON = errors.New("no JSON object found in response")

// ParseJSON extracts the outermost JSON object of an LLM response, ignoring
// markdown fences or prose around it, and unmarshals it into T.
func ParseJSON[T any](response string) (T, error) {
	var result T

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end < start {
		return result, ErrNoJSON
	}

	data := response[start : end+1]
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, data)
	}
	return result, nil
}
