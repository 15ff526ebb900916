package utils

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

const (
	ansiGreen = "\x1b[92m"
	ansiRed   = "\x1b[91m"
	ansiReset = "\x1b[0m"
)

// RenderMarkdown highlights a complete markdown answer line by line. Code blocks are
// highlighted with the language of their fence; added and removed lines inside diff
// blocks are coloured.
func RenderMarkdown(ctx context.Context, w io.Writer, content string, theme string) error {
	inCodeBlock := false
	language := "markdown"

	for _, line := range strings.Split(content, "\n") {
		select {
		case <-ctx.Done():
			fmt.Fprint(w, "\n\n🔄 Output interrupted...\n")
			return ctx.Err()
		default:
		}

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCodeBlock {
				inCodeBlock = false
				language = "markdown"
			} else {
				inCodeBlock = true
				language = DetectLanguageFromCodeBlock(line)
			}
			if err := quick.Highlight(w, line+"\n", "markdown", "terminal256", theme); err != nil {
				return err
			}
			continue
		}

		if inCodeBlock && language == "diff" {
			switch {
			case strings.HasPrefix(line, "+"):
				fmt.Fprint(w, ansiGreen+line+ansiReset+"\n")
				continue
			case strings.HasPrefix(line, "-"):
				fmt.Fprint(w, ansiRed+line+ansiReset+"\n")
				continue
			}
		}

		if err := quick.Highlight(w, line+"\n", language, "terminal256", theme); err != nil {
			return err
		}
	}

	return nil
}
