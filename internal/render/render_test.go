package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

func TestDiscussionEnglish(t *testing.T) {
	r, err := New("en")
	require.NoError(t, err)

	out, err := r.Discussion(DiscussionData{
		FilePath: "internal/api/server.go",
		Verdict: core.Verdict{
			Approved:    false,
			Score:       4,
			Issues:      []string{"missing error check"},
			Suggestions: []string{"wrap the error"},
			Summary:     "Error handling is incomplete",
		},
		Model: "gpt-4o-mini",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "internal/api/server.go")
	assert.Contains(t, out, "changes requested")
	assert.Contains(t, out, "score: 4/10")
	assert.Contains(t, out, "missing error check")
	assert.Contains(t, out, "wrap the error")
	assert.Contains(t, out, "gpt-4o-mini")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestDiscussionApprovedOmitsEmptySections(t *testing.T) {
	r, err := New("en")
	require.NoError(t, err)

	out, err := r.Discussion(DiscussionData{
		FilePath: "a.go",
		Verdict:  core.Verdict{Approved: true, Score: 9, Summary: "Clean change"},
		Model:    "gpt-4o-mini",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "approved")
	assert.NotContains(t, out, "**Issues**")
	assert.NotContains(t, out, "**Suggestions**")
}

func TestDiscussionChinese(t *testing.T) {
	r, err := New("zh")
	require.NoError(t, err)

	out, err := r.Discussion(DiscussionData{
		FilePath: "a.go",
		Verdict:  core.Verdict{Approved: true, Score: 9, Summary: "代码整洁"},
		Model:    "gpt-4o-mini",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "通过")
	assert.Contains(t, out, "代码整洁")
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	r, err := New("fr")
	require.NoError(t, err)

	out, err := r.Unavailable("a.go")
	require.NoError(t, err)
	assert.Contains(t, out, "unavailable")
}

func TestFileLimit(t *testing.T) {
	r, err := New("en")
	require.NoError(t, err)

	out, err := r.FileLimit(34, 20)
	require.NoError(t, err)
	assert.Contains(t, out, "34")
	assert.Contains(t, out, "20")
}
