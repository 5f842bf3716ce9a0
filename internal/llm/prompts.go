package llm

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// PromptKey names an embedded prompt template.
type PromptKey string

const (
	ReviewSystemPrompt PromptKey = "review_system"
	ReviewUserPrompt   PromptKey = "review_user"
)

// UserPromptData is the context rendered into the per-file user prompt.
type UserPromptData struct {
	FilePath   string
	OldPath    string
	ChangeType core.ChangeType
	Language   string
	Diff       string
}

// PromptManager loads prompt templates embedded in the binary. Filenames
// follow the `key_locale.prompt` convention; a template is looked up by key
// and locale, falling back to English.
type PromptManager struct {
	prompts map[PromptKey]map[string]*template.Template
}

// NewPromptManager parses every embedded prompt template.
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{prompts: make(map[PromptKey]map[string]*template.Template)}

	files, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts directory: %w", err)
	}

	for _, file := range files {
		name := file.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		idx := strings.LastIndex(base, "_")
		if idx <= 0 || idx == len(base)-1 {
			return nil, fmt.Errorf("invalid prompt filename %s (expected 'key_locale.prompt')", name)
		}
		key, locale := PromptKey(base[:idx]), base[idx+1:]

		content, err := promptFiles.ReadFile("prompts/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt %s: %w", name, err)
		}
		tmpl, err := template.New(base).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %s: %w", name, err)
		}

		if pm.prompts[key] == nil {
			pm.prompts[key] = make(map[string]*template.Template)
		}
		pm.prompts[key][locale] = tmpl
	}

	for _, key := range []PromptKey{ReviewSystemPrompt, ReviewUserPrompt} {
		if pm.prompts[key]["en"] == nil {
			return nil, fmt.Errorf("missing required prompt %s_en", key)
		}
	}
	return pm, nil
}

// Render executes the template for key in the given locale.
func (pm *PromptManager) Render(key PromptKey, locale string, data any) (string, error) {
	byLocale, ok := pm.prompts[key]
	if !ok {
		return "", fmt.Errorf("unknown prompt key %q", key)
	}
	tmpl, ok := byLocale[locale]
	if !ok {
		tmpl = byLocale["en"]
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", key, err)
	}
	return buf.String(), nil
}
