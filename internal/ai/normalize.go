// Package ai talks to the language model that enriches products and turns
// its replies into JSON objects.
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const fence = "```"

var ErrEmptyResponse = errors.New("empty model response")

// NormalizeJSON strips an optional markdown code fence (with or without a
// language tag) around a model reply and parses the remainder as a JSON
// object. Invalid JSON is an error, never an empty map.
func NormalizeJSON(raw string) (map[string]any, error) {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, fence) {
		if idx := strings.Index(cleaned, "\n"); idx != -1 {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSuffix(cleaned, fence)
	}
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("model response is not a JSON object")
	}
	return obj, nil
}
