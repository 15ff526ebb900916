package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds helper commands such as git.
const DefaultCommandTimeout = 10 * time.Second

// CommandRunner runs an external program and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// CommandExecutor runs read-only helper commands inside a working directory.
type CommandExecutor struct {
	Timeout time.Duration
}

// NewCommandExecutor creates a new command executor instance
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{Timeout: DefaultCommandTimeout}
}

// Run executes name with args in dir. Stderr is folded into the returned error.
func (ce *CommandExecutor) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty command provided")
	}

	if ce.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ce.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s %s timed out after %s", name, strings.Join(args, " "), ce.Timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}

	return stdout.String(), nil
}
