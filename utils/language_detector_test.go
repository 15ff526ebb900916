package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSupportedLanguage(t *testing.T) {
	cases := map[string]string{
		"main.go":             "go",
		"pkg/Server.JAVA":     "java",
		"web/app.tsx":         "typescript",
		"src/lib.rs":          "rust",
		"build.zig":           "zig",
		"deploy/Dockerfile":   "docker",
		"Makefile":            "makefile",
		"notes.txt":           "",
		"LICENSE":             "",
		"config/settings.yml": "yaml",
	}
	for path, expected := range cases {
		assert.Equal(t, expected, GetSupportedLanguage(path), path)
	}
}

func TestDetectLanguageFromCodeBlock(t *testing.T) {
	assert.Equal(t, "go", DetectLanguageFromCodeBlock("```go"))
	assert.Equal(t, "python", DetectLanguageFromCodeBlock("  ```Python title=\"x\""))
	assert.Equal(t, "markdown", DetectLanguageFromCodeBlock("```"))
	assert.Equal(t, "markdown", DetectLanguageFromCodeBlock("plain text"))
}

func TestParseLogLevel(t *testing.T) {
	for _, level := range LogLevels {
		_, ok := ParseLogLevel(level)
		assert.True(t, ok, level)
	}
	_, ok := ParseLogLevel("chatty")
	assert.False(t, ok)
}
