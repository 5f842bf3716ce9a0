// Package render produces the user-facing GitLab text: per-file verdict
// discussion bodies, the service-unavailable notice, and the file-limit
// notification. Templates are embedded per locale; the locale is fixed at
// construction time.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/oaixnah/llm-for-gitlab-code-review/internal/core"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

type key string

const (
	discussionKey  key = "discussion"
	unavailableKey key = "unavailable"
	fileLimitKey   key = "file_limit"
)

// DiscussionData feeds the verdict discussion template.
type DiscussionData struct {
	FilePath string
	Verdict  core.Verdict
	Model    string
}

// FileLimitData feeds the file-limit notification template.
type FileLimitData struct {
	FileCount int
	Limit     int
}

// Renderer renders GitLab-facing text in one locale.
type Renderer struct {
	locale    string
	templates map[key]map[string]*template.Template
}

// New parses the embedded templates (named `key_locale.tmpl`) and binds
// the renderer to locale, falling back to English for missing ones.
func New(locale string) (*Renderer, error) {
	r := &Renderer{
		locale:    locale,
		templates: make(map[key]map[string]*template.Template),
	}

	files, err := templateFiles.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded templates: %w", err)
	}
	for _, file := range files {
		name := file.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		idx := strings.LastIndex(base, "_")
		if idx <= 0 || idx == len(base)-1 {
			return nil, fmt.Errorf("invalid template filename %s (expected 'key_locale.tmpl')", name)
		}
		k, loc := key(base[:idx]), base[idx+1:]

		content, err := templateFiles.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		tmpl, err := template.New(base).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		if r.templates[k] == nil {
			r.templates[k] = make(map[string]*template.Template)
		}
		r.templates[k][loc] = tmpl
	}

	for _, k := range []key{discussionKey, unavailableKey, fileLimitKey} {
		if r.templates[k]["en"] == nil {
			return nil, fmt.Errorf("missing required template %s_en", k)
		}
	}
	return r, nil
}

func (r *Renderer) render(k key, data any) (string, error) {
	tmpl, ok := r.templates[k][r.locale]
	if !ok {
		tmpl = r.templates[k]["en"]
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", k, err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// Discussion renders the verdict body posted on a file's thread.
func (r *Renderer) Discussion(d DiscussionData) (string, error) {
	return r.render(discussionKey, d)
}

// Unavailable renders the notice posted when evaluation retries are
// exhausted and the file stays pending.
func (r *Renderer) Unavailable(filePath string) (string, error) {
	return r.render(unavailableKey, struct{ FilePath string }{filePath})
}

// FileLimit renders the oversized-change-set notification.
func (r *Renderer) FileLimit(fileCount, limit int) (string, error) {
	return r.render(fileLimitKey, FileLimitData{FileCount: fileCount, Limit: limit})
}
