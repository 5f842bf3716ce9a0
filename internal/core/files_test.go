package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportedFile(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"go source", "internal/server/router.go", true},
		{"python source", "scripts/migrate.py", true},
		{"typescript react", "web/src/App.tsx", true},
		{"uppercase extension", "LEGACY/MAIN.PY", true},
		{"makefile by name", "build/Makefile", true},
		{"dockerfile by name", "Dockerfile", true},
		{"yaml config", "deploy/values.yaml", true},
		{"markdown", "README.md", false},
		{"lock file", "go.sum", false},
		{"binary blob", "assets/logo.png", false},
		{"no extension", "LICENSE", false},
		{"empty path", "", false},
		{"dockerfile-like suffix only", "app.dockerfile", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SupportedFile(tt.path))
		})
	}
}

func TestFileChangeFingerprint(t *testing.T) {
	a := FileChange{Path: "a.go", Diff: "@@ -1 +1 @@\n-x\n+y\n"}
	b := FileChange{Path: "b.go", Diff: "@@ -1 +1 @@\n-x\n+y\n"}
	c := FileChange{Path: "a.go", Diff: "@@ -1 +1 @@\n-x\n+z\n"}

	// Identity comes from content only; the path is tracked separately.
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)
}

func TestFileChangeNoOp(t *testing.T) {
	tests := []struct {
		name   string
		change FileChange
		want   bool
	}{
		{"pure rename", FileChange{ChangeType: ChangeRenamed, Diff: ""}, true},
		{"rename with whitespace diff", FileChange{ChangeType: ChangeRenamed, Diff: "  \n"}, true},
		{"rename with content change", FileChange{ChangeType: ChangeRenamed, Diff: "@@ -1 +1 @@"}, false},
		{"empty modification", FileChange{ChangeType: ChangeModified, Diff: ""}, false},
		{"added file", FileChange{ChangeType: ChangeAdded, Diff: "+pkg main"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.change.NoOp())
		})
	}
}
