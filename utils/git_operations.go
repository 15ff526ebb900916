package utils

import (
	"context"
	"fmt"
	"strings"
)

// GitOperations reads repository state to enrich prompts.
type GitOperations struct {
	workingDir string
	runner     CommandRunner
}

// GitChange is one line of `git status --porcelain`.
type GitChange struct {
	Status string
	Path   string
}

// GitCommit is a condensed `git log` entry.
type GitCommit struct {
	Hash    string
	Author  string
	Date    string
	Message string
}

var gitStatusDescriptions = map[string]string{
	"M":  "Modified",
	"A":  "Added",
	"D":  "Deleted",
	"R":  "Renamed",
	"??": "Untracked",
	"MM": "Modified (staged & unstaged)",
	"AM": "Added & modified",
}

// NewGitOperations creates a new GitOperations instance
func NewGitOperations(workingDir string, runner CommandRunner) *GitOperations {
	if runner == nil {
		runner = NewCommandExecutor()
	}
	return &GitOperations{workingDir: workingDir, runner: runner}
}

// CheckGitRepo checks if the working directory is inside a git repository
func (g *GitOperations) CheckGitRepo(ctx context.Context) error {
	if _, err := g.runner.Run(ctx, g.workingDir, "git", "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}
	return nil
}

// GetBranchName returns the current branch name
func (g *GitOperations) GetBranchName(ctx context.Context) (string, error) {
	output, err := g.runner.Run(ctx, g.workingDir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get branch name: %w", err)
	}
	return strings.TrimSpace(output), nil
}

// GetUncommittedChanges returns staged, unstaged and untracked paths.
func (g *GitOperations) GetUncommittedChanges(ctx context.Context) ([]GitChange, error) {
	output, err := g.runner.Run(ctx, g.workingDir, "git", "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to get git status: %w", err)
	}
	return parseGitStatus(output), nil
}

// GetRecentCommits returns up to limit commits, newest first.
func (g *GitOperations) GetRecentCommits(ctx context.Context, limit int) ([]GitCommit, error) {
	output, err := g.runner.Run(ctx, g.workingDir, "git", "log", fmt.Sprintf("--max-count=%d", limit), "--pretty=format:%H|%an|%ad|%s", "--date=short")
	if err != nil {
		return nil, fmt.Errorf("failed to get recent commits: %w", err)
	}
	return parseGitLog(output), nil
}

// FormatGitContext renders branch, uncommitted changes and recent commits as a prompt section.
func (g *GitOperations) FormatGitContext(ctx context.Context, commitLimit int) (string, error) {
	if err := g.CheckGitRepo(ctx); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# Git Context\n\n")

	if branch, err := g.GetBranchName(ctx); err == nil && branch != "" {
		sb.WriteString(fmt.Sprintf("Branch: %s\n\n", branch))
	}

	changes, err := g.GetUncommittedChanges(ctx)
	if err != nil {
		return "", err
	}
	if len(changes) > 0 {
		sb.WriteString("## Uncommitted Changes:\n")
		for _, change := range changes {
			sb.WriteString(fmt.Sprintf("  - %s (%s)\n", change.Path, change.Description()))
		}
		sb.WriteString("\n")
	}

	// A repository without commits has no log.
	commits, err := g.GetRecentCommits(ctx, commitLimit)
	if err == nil && len(commits) > 0 {
		sb.WriteString("## Recent Commits:\n")
		for _, commit := range commits {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", commit.Hash, commit.Message))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// Description maps the porcelain status code to a readable label.
func (c GitChange) Description() string {
	if desc, ok := gitStatusDescriptions[c.Status]; ok {
		return desc
	}
	return c.Status
}

func parseGitStatus(output string) []GitChange {
	var changes []GitChange
	for _, line := range strings.Split(output, "\n") {
		if len(strings.TrimSpace(line)) == 0 || len(line) < 4 {
			continue
		}
		changes = append(changes, GitChange{
			Status: strings.TrimSpace(line[:2]),
			Path:   strings.TrimSpace(line[3:]),
		})
	}
	return changes
}

func parseGitLog(output string) []GitCommit {
	var commits []GitCommit
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		hash := parts[0]
		if len(hash) > 7 {
			hash = hash[:7]
		}
		commits = append(commits, GitCommit{Hash: hash, Author: parts[1], Date: parts[2], Message: parts[3]})
	}
	return commits
}
