package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"internal/core/events.go", "Go"},
		{"web/src/App.tsx", "TypeScript"},
		{"scripts/deploy.SH", "Shell"},
		{"build/Makefile", "Makefile"},
		{"Dockerfile", "Dockerfile"},
		{"deploy/values.yaml", "YAML"},
		{"LICENSE", "code"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageForPath(tt.path))
		})
	}
}
