package core

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// supportedExtensions lists the file types the engine will send to the LLM.
// Everything else is acknowledged as unsupported and produces no verdict row.
var supportedExtensions = map[string]struct{}{
	// C / C++
	".c": {}, ".h": {}, ".cpp": {}, ".cc": {}, ".cxx": {}, ".hpp": {}, ".hh": {}, ".hxx": {},
	// C#
	".cs": {},
	// Go
	".go": {},
	// Rust
	".rs": {},
	// JVM
	".java": {}, ".kt": {}, ".kts": {}, ".scala": {},
	// Apple
	".swift": {}, ".m": {}, ".mm": {},
	// JavaScript / TypeScript
	".js": {}, ".mjs": {}, ".cjs": {}, ".ts": {}, ".jsx": {}, ".tsx": {},
	// Web
	".vue": {}, ".html": {}, ".htm": {}, ".css": {}, ".scss": {}, ".less": {},
	// PHP
	".php": {}, ".phtml": {},
	// Python
	".py": {}, ".pyw": {}, ".pyi": {},
	// Ruby
	".rb": {}, ".erb": {}, ".rake": {},
	// Shell
	".sh": {}, ".bash": {}, ".zsh": {},
	// Misc languages
	".lua": {}, ".dart": {}, ".ets": {},
	// Config
	".json": {}, ".yaml": {}, ".yml": {}, ".xml": {},
	// Build
	".mk": {},
}

// specialFilenames are extensionless files reviewed by exact name.
var specialFilenames = map[string]struct{}{
	"Makefile":   {},
	"Dockerfile": {},
}

// SupportedFile reports whether the path is a file type the engine reviews.
func SupportedFile(path string) bool {
	if path == "" {
		return false
	}
	if _, ok := specialFilenames[filepath.Base(path)]; ok {
		return true
	}
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Fingerprint derives the content fingerprint of a file change. Equal
// fingerprints on resubmission mean the file did not change since it was
// last evaluated.
func (c FileChange) Fingerprint() string {
	sum := sha256.Sum256([]byte(c.Diff))
	return hex.EncodeToString(sum[:])
}

// NoOp reports whether the change carries nothing to review: a pure rename
// with identical content.
func (c FileChange) NoOp() bool {
	return c.ChangeType == ChangeRenamed && strings.TrimSpace(c.Diff) == ""
}
