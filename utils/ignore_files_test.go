package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldInclude_EmptyRuleSetIncludesEverything(t *testing.T) {
	assert.True(t, ShouldInclude("src/main.go", false, nil))
	assert.True(t, ShouldInclude("node_modules/pkg/index.js", false, NewIgnoreRuleSet()))
}

func TestShouldInclude_NameMatchesAnySegment(t *testing.T) {
	rules := NewIgnoreRuleSet([]string{"node_modules"})

	assert.False(t, ShouldInclude("node_modules", true, rules))
	assert.False(t, ShouldInclude("node_modules/pkg/index.js", false, rules))
	assert.False(t, ShouldInclude("web/node_modules/pkg/index.js", false, rules))
	assert.True(t, ShouldInclude("src/app.js", false, rules))
	assert.True(t, ShouldInclude("src/node_modules_helper.js", false, rules))
}

func TestShouldInclude_Glob(t *testing.T) {
	rules := NewIgnoreRuleSet([]string{"*.log", "*.min.*"})

	assert.False(t, ShouldInclude("debug.log", false, rules))
	assert.False(t, ShouldInclude("logs/2024/app.log", false, rules))
	assert.False(t, ShouldInclude("static/app.min.js", false, rules))
	assert.True(t, ShouldInclude("logger.go", false, rules))
}

func TestShouldInclude_DirectoryOnly(t *testing.T) {
	rules := NewIgnoreRuleSet([]string{"build/"})

	assert.False(t, ShouldInclude("build", true, rules))
	assert.False(t, ShouldInclude("build/output.txt", false, rules))
	// a file named build is kept
	assert.True(t, ShouldInclude("scripts/build", false, rules))
}

func TestShouldInclude_Negation(t *testing.T) {
	rules := NewIgnoreRuleSet([]string{"*.json", "!package.json"})

	assert.False(t, ShouldInclude("data/fixtures.json", false, rules))
	assert.True(t, ShouldInclude("package.json", false, rules))
	assert.True(t, ShouldInclude("web/package.json", false, rules))
}

func TestShouldInclude_NegationCannotReincludeInsideExcludedDirectory(t *testing.T) {
	rules := NewIgnoreRuleSet([]string{"vendor", "!vendor/keep.go"})

	assert.False(t, ShouldInclude("vendor/keep.go", false, rules))
}

func TestShouldInclude_PathPatternsAndAnchors(t *testing.T) {
	rules := NewIgnoreRuleSet([]string{"docs/generated", "/tmp", "**/fixtures"})

	assert.False(t, ShouldInclude("docs/generated/api.md", false, rules))
	assert.False(t, ShouldInclude("service/docs/generated/api.md", false, rules))
	assert.True(t, ShouldInclude("docs/guide.md", false, rules))
	assert.False(t, ShouldInclude("tmp/scratch.txt", false, rules))
	assert.False(t, ShouldInclude("pkg/tmp/scratch.txt", false, rules))
	assert.False(t, ShouldInclude("a/b/fixtures/one.txt", false, rules))
}

func TestShouldInclude_CaseSensitive(t *testing.T) {
	rules := NewIgnoreRuleSet([]string{"README.md"})

	assert.False(t, ShouldInclude("README.md", false, rules))
	assert.True(t, ShouldInclude("readme.md", false, rules))
}

func TestShouldInclude_DefaultPatterns(t *testing.T) {
	rules := NewIgnoreRuleSet(DefaultIgnorePatterns)

	assert.False(t, ShouldInclude(".git/config", false, rules))
	assert.False(t, ShouldInclude(".cache/data", false, rules))
	assert.False(t, ShouldInclude("app/__pycache__/mod.pyc", false, rules))
	assert.True(t, ShouldInclude(".github/workflows/ci.yml", false, rules))
	assert.True(t, ShouldInclude(".gitignore", false, rules))
	assert.True(t, ShouldInclude("cmd/root.go", false, rules))
}

func TestNewIgnoreRuleSet_SkipsBlankAndComments(t *testing.T) {
	rules := NewIgnoreRuleSet([]string{"", "  ", "# comment", "*.tmp"}, []string{"/", "!"})

	assert.Equal(t, 1, rules.Len())
}

func TestGetIgnoreFilePatterns(t *testing.T) {
	root := t.TempDir()

	// missing file
	patterns, err := GetIgnoreFilePatterns(root)
	require.NoError(t, err)
	assert.Empty(t, patterns)

	content := "# generated\n*.gen.go\n\n  secrets/  \n"
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFileName), []byte(content), 0o644))

	patterns, err = GetIgnoreFilePatterns(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.gen.go", "secrets/"}, patterns)
}
