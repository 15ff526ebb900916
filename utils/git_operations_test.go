package utils

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers git invocations from a table keyed by the first git argument.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, _ string, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	key := args[0]
	if key == "rev-parse" {
		key = args[1]
	}
	if err := f.errs[key]; err != nil {
		return "", err
	}
	return f.outputs[key], nil
}

func TestFormatGitContext(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"--git-dir":    ".git\n",
		"--abbrev-ref": "feature/cart\n",
		"status":       " M cmd/main.go\n?? notes.txt\nA  internal/cart/cart.go\n",
		"log":          "0123456789abcdef|Ada|2024-05-01|Add cart\nfedcba9876543210|Bob|2024-04-30|Initial commit",
	}}
	git := NewGitOperations("/repo", runner)

	out, err := git.FormatGitContext(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "# Git Context\n\n"+
		"Branch: feature/cart\n\n"+
		"## Uncommitted Changes:\n"+
		"  - cmd/main.go (Modified)\n"+
		"  - notes.txt (Untracked)\n"+
		"  - internal/cart/cart.go (Added)\n\n"+
		"## Recent Commits:\n"+
		"  - 0123456: Add cart\n"+
		"  - fedcba9: Initial commit\n\n", out)
	assert.Contains(t, runner.calls, "git log --max-count=5 --pretty=format:%H|%an|%ad|%s --date=short")
}

func TestFormatGitContext_NotARepository(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"--git-dir": errors.New("fatal: not a git repository")}}

	_, err := NewGitOperations("/tmp", runner).FormatGitContext(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
}

func TestFormatGitContext_RepositoryWithoutCommits(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"--git-dir": ".git", "--abbrev-ref": "main", "status": ""},
		errs:    map[string]error{"log": errors.New("fatal: your current branch 'main' does not have any commits yet")},
	}

	out, err := NewGitOperations("/repo", runner).FormatGitContext(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "# Git Context\n\nBranch: main\n\n", out)
}

func TestParseGitLog_SkipsMalformedLines(t *testing.T) {
	commits := parseGitLog("abc|only two\n1234567890|A|2024-01-01|msg | with pipe\n")

	require.Len(t, commits, 1)
	assert.Equal(t, GitCommit{Hash: "1234567", Author: "A", Date: "2024-01-01", Message: "msg | with pipe"}, commits[0])
}

func TestGitChange_Description(t *testing.T) {
	assert.Equal(t, "Deleted", GitChange{Status: "D"}.Description())
	assert.Equal(t, "UU", GitChange{Status: "UU"}.Description())
}

func TestCommandExecutor_Run(t *testing.T) {
	executor := NewCommandExecutor()

	_, err := executor.Run(context.Background(), "", "  ")
	assert.Error(t, err)

	_, err = executor.Run(context.Background(), t.TempDir(), "devcli-command-that-does-not-exist")
	assert.Error(t, err)
}
