package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

const (
	maxIssues      = 3
	maxSuggestions = 3
	maxSummaryLen  = 50
)

// ParseVerdict extracts the structured verdict from raw model output. It
// tolerates common quirks: code fences around the JSON and prose before or
// after it. The verdict is clamped to its contract: score 1-10, at most
// three issues and suggestions, summary capped at 50 characters.
func ParseVerdict(text string) (core.Verdict, error) {
	text = stripCodeFence(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return core.Verdict{}, fmt.Errorf("no JSON object found in response")
	}

	var v core.Verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return core.Verdict{}, fmt.Errorf("malformed verdict JSON: %w", err)
	}

	if v.Score < 1 {
		v.Score = 1
	} else if v.Score > 10 {
		v.Score = 10
	}
	if len(v.Issues) > maxIssues {
		v.Issues = v.Issues[:maxIssues]
	}
	if len(v.Suggestions) > maxSuggestions {
		v.Suggestions = v.Suggestions[:maxSuggestions]
	}
	if runes := []rune(v.Summary); len(runes) > maxSummaryLen {
		v.Summary = string(runes[:maxSummaryLen])
	}

	return v, nil
}

// stripCodeFence removes a ```json ... ``` (or bare ```) wrapper some
// models add around their output.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
