package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/devcli/devcli/constants/lipgloss"
)

// ErrInputClosed is returned when stdin reaches EOF.
var ErrInputClosed = errors.New("input closed")

type readResult struct {
	line string
	err  error
}

// InputPromptWithContext prompts the user with context cancellation support
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	resultChan := make(chan readResult, 1)

	go func() {
		fmt.Print(lipgloss.BlueSky.Render("> "))

		userInput, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if strings.TrimSpace(userInput) != "" {
					resultChan <- readResult{line: strings.TrimSpace(userInput)}
					return
				}
				resultChan <- readResult{err: ErrInputClosed}
				return
			}
			resultChan <- readResult{err: fmt.Errorf("error reading input: %w", err)}
			return
		}
		resultChan <- readResult{line: strings.TrimSpace(userInput)}
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return "", ctx.Err()
	case result := <-resultChan:
		return result.line, result.err
	}
}

// ConfirmPrompt asks a yes/no question; anything but "y" or "yes" is a no.
func ConfirmPrompt(question string, reader *bufio.Reader) (bool, error) {
	fmt.Print(lipgloss.Yellow.Render(fmt.Sprintf("%s (y/N): ", question)))

	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("error reading input: %w", err)
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
