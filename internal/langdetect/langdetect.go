// Package langdetect maps file extensions to language tags.
package langdetect

import (
	"path/filepath"
	"strings"
)

// extensions maps a lowercased suffix (without the leading dot) to a
// language tag. Multiple extensions may share a language.
var extensions = map[string]string{
	"ts":   "typescript",
	"tsx":  "tsx",
	"js":   "javascript",
	"jsx":  "javascript",
	"mjs":  "javascript",
	"cjs":  "javascript",
	"py":   "python",
	"pyw":  "python",
	"rs":   "rust",
	"go":   "go",
	"java": "java",
	"css":  "css",
	"json": "json",
	"html": "html",
	"htm":  "html",
	"yml":  "yaml",
	"yaml": "yaml",
	"md":   "markdown",
}

// codeLanguages is the subset of languages eligible for symbol extraction.
var codeLanguages = map[string]bool{
	"typescript": true,
	"tsx":        true,
	"javascript": true,
	"python":     true,
	"rust":       true,
	"go":         true,
	"java":       true,
}

// Detect returns the language tag for path, or "" if unrecognized.
func Detect(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		// No extension, or a dotfile with no further dot (e.g. ".gitignore").
		return ""
	}
	ext := strings.ToLower(base[idx+1:])
	return extensions[ext]
}

// IsCode reports whether language is eligible for symbol extraction.
func IsCode(language string) bool {
	return codeLanguages[language]
}

// Extensions returns the set of recognized extensions (without the dot),
// used by the walker to prune the discovery set before reading file content.
func Extensions() map[string]bool {
	out := make(map[string]bool, len(extensions))
	for ext := range extensions {
		out[ext] = true
	}
	return out
}
