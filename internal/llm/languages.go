package llm

import (
	"path/filepath"
	"strings"
)

// languageByExtension is the static mapping from file extension to the
// language tag used in prompts. Resolved once per file; unknown extensions
// fall back to a generic tag.
var languageByExtension = map[string]string{
	".c": "C", ".h": "C",
	".cpp": "C++", ".cc": "C++", ".cxx": "C++", ".hpp": "C++", ".hh": "C++", ".hxx": "C++",
	".cs":    "C#",
	".go":    "Go",
	".rs":    "Rust",
	".java":  "Java",
	".kt":    "Kotlin",
	".kts":   "Kotlin",
	".scala": "Scala",
	".swift": "Swift",
	".m":     "Objective-C",
	".mm":    "Objective-C++",
	".js":    "JavaScript", ".mjs": "JavaScript", ".cjs": "JavaScript", ".jsx": "JavaScript",
	".ts": "TypeScript", ".tsx": "TypeScript",
	".vue":  "Vue",
	".html": "HTML", ".htm": "HTML",
	".css": "CSS", ".scss": "SCSS", ".less": "Less",
	".php": "PHP", ".phtml": "PHP",
	".py": "Python", ".pyw": "Python", ".pyi": "Python",
	".rb": "Ruby", ".erb": "Ruby", ".rake": "Ruby",
	".sh": "Shell", ".bash": "Shell", ".zsh": "Shell",
	".lua":  "Lua",
	".dart": "Dart",
	".ets":  "ArkTS",
	".json": "JSON", ".yaml": "YAML", ".yml": "YAML", ".xml": "XML",
	".mk": "Makefile",
}

// LanguageForPath resolves the prompt language tag for a file path.
func LanguageForPath(path string) string {
	base := filepath.Base(path)
	switch base {
	case "Makefile":
		return "Makefile"
	case "Dockerfile":
		return "Dockerfile"
	}
	if lang, ok := languageByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "code"
}
