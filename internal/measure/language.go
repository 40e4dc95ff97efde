package measure

import (
	"path/filepath"
	"strings"
)

var extLanguages = map[string]string{
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".cxx":  "cpp",
	".hh":   "cpp",
	".hpp":  "cpp",
	".hxx":  "cpp",
	".cs":   "csharp",
	".go":   "go",
	".java": "java",
	".js":   "js",
	".jsx":  "js",
	".mjs":  "js",
	".kt":   "kotlin",
	".py":   "py",
	".rs":   "rust",
	".ts":   "ts",
	".tsx":  "ts",
}

// Language returns the language identifier of a source path, or "" when the
// extension is not recognised.
func Language(path string) string {
	return extLanguages[strings.ToLower(filepath.Ext(path))]
}
