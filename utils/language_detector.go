package utils

import (
	"path/filepath"
	"strings"
)

var extensionLanguages = map[string]string{
	".go":    "go",
	".py":    "python",
	".java":  "java",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".rs":    "rust",
	".zig":   "zig",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".php":   "php",
	".kt":    "kotlin",
	".swift": "swift",
	".scala": "scala",
	".sh":    "bash",
	".bash":  "bash",
	".zsh":   "bash",
	".sql":   "sql",
	".html":  "html",
	".css":   "css",
	".scss":  "scss",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".md":    "markdown",
	".proto": "protobuf",
}

var fileNameLanguages = map[string]string{
	"Dockerfile": "docker",
	"Makefile":   "makefile",
	"go.mod":     "go",
}

// GetSupportedLanguage returns the language name for a file path, or "" when unknown.
func GetSupportedLanguage(filePath string) string {
	base := filepath.Base(filePath)
	if lang, ok := fileNameLanguages[base]; ok {
		return lang
	}
	return extensionLanguages[strings.ToLower(filepath.Ext(base))]
}

// DetectLanguageFromCodeBlock reads the language tag of an opening code fence.
// Lines that are not fences, and untagged fences, yield "markdown".
func DetectLanguageFromCodeBlock(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "```") {
		return "markdown"
	}
	tag := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	if fields := strings.Fields(tag); len(fields) > 0 {
		return strings.ToLower(fields[0])
	}
	return "markdown"
}
