package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantApproved bool
		wantScore    int
		wantSummary  string
		expectErr    bool
	}{
		{
			name:         "plain JSON",
			input:        `{"approved": true, "score": 9, "issues": [], "suggestions": [], "summary": "Looks good"}`,
			wantApproved: true,
			wantScore:    9,
			wantSummary:  "Looks good",
		},
		{
			name: "fenced JSON",
			input: "```json\n" +
				`{"approved": false, "score": 4, "issues": ["missing error check"], "summary": "Needs work"}` +
				"\n```",
			wantApproved: false,
			wantScore:    4,
			wantSummary:  "Needs work",
		},
		{
			name: "prose around the object",
			input: `Here is my assessment of the change.

{"approved": true, "score": 8, "summary": "Solid refactor"}

Let me know if you need more detail.`,
			wantApproved: true,
			wantScore:    8,
			wantSummary:  "Solid refactor",
		},
		{
			name:      "no JSON at all",
			input:     "I cannot review this file.",
			expectErr: true,
		},
		{
			name:      "truncated JSON",
			input:     `{"approved": true, "score":`,
			expectErr: true,
		},
		{
			name:         "score clamped high",
			input:        `{"approved": true, "score": 99, "summary": "x"}`,
			wantApproved: true,
			wantScore:    10,
			wantSummary:  "x",
		},
		{
			name:         "score clamped low",
			input:        `{"approved": false, "score": 0, "summary": "x"}`,
			wantApproved: false,
			wantScore:    1,
			wantSummary:  "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVerdict(tt.input)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantApproved, v.Approved)
			assert.Equal(t, tt.wantScore, v.Score)
			assert.Equal(t, tt.wantSummary, v.Summary)
		})
	}
}

func TestParseVerdictClampsLists(t *testing.T) {
	input := `{"approved": false, "score": 3,
		"issues": ["a", "b", "c", "d", "e"],
		"suggestions": ["1", "2", "3", "4"],
		"summary": "` + strings.Repeat("long ", 30) + `"}`

	v, err := ParseVerdict(input)
	require.NoError(t, err)
	assert.Len(t, v.Issues, 3)
	assert.Len(t, v.Suggestions, 3)
	assert.Len(t, []rune(v.Summary), 50)
}

func TestParseVerdictMultibyteSummary(t *testing.T) {
	input := `{"approved": true, "score": 7, "summary": "` + strings.Repeat("好", 60) + `"}`

	v, err := ParseVerdict(input)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("好", 50), v.Summary)
}
