package code_analyzer

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/embed_data"
	"github.com/devcli/devcli/utils"
)

// minMentionStem is the shortest file stem that counts as a mention.
const minMentionStem = 3

const sectionSeparator = "\n______\n\n"

// GeneratePrompt composes the system prompt and the user prompt for one question.
// A nil projectContext produces the no-context prompt. requestedContext is appended
// verbatim, for example git state.
func (analyzer *CodeAnalyzer) GeneratePrompt(projectContext *models.ProjectContext, history []string, userInput string, requestedContext string) (string, string) {
	var sections []string

	if projectContext == nil {
		sections = append(sections, strings.TrimSpace(string(embed_data.NoContextPrompt)))
	} else {
		sections = append(sections, strings.TrimSpace(string(embed_data.SystemPrompt)))
		sections = append(sections, formatOverview(projectContext))
		sections = append(sections, "# File Tree\n\n"+GetFileTree(filepath.Base(projectContext.Root), includedPaths(projectContext)))
		if repoMap := analyzer.BuildRepoMap(projectContext); repoMap != "" {
			sections = append(sections, "# Repository Map\n\n"+repoMap)
		}
		sections = append(sections, formatFileContents(projectContext, DetectMentionedFiles(projectContext, userInput)))
	}

	if strings.TrimSpace(requestedContext) != "" {
		sections = append(sections, strings.TrimSpace(requestedContext))
	}

	if len(history) > 0 {
		sections = append(sections, "# Conversation History\n\n"+strings.Join(history, "\n---------\n\n"))
	}

	systemPrompt := strings.Join(sections, sectionSeparator)
	userInputPrompt := fmt.Sprintf("## Question\n\n%s", userInput)

	return systemPrompt, userInputPrompt
}

// DetectMentionedFiles returns the paths of context files named in the question,
// by relative path, file name, or file stem of at least three characters.
func DetectMentionedFiles(projectContext *models.ProjectContext, question string) []string {
	if projectContext == nil {
		return nil
	}

	q := strings.ToLower(question)
	var mentioned []string
	for _, file := range projectContext.Files {
		p := strings.ToLower(file.Path)
		base := path.Base(p)
		stem := strings.TrimSuffix(base, path.Ext(base))

		switch {
		case strings.Contains(q, p), containsWord(q, base):
			mentioned = append(mentioned, file.Path)
		case len(stem) >= minMentionStem && containsWord(q, stem):
			mentioned = append(mentioned, file.Path)
		}
	}
	return mentioned
}

func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	re := regexp.MustCompile(`(^|[^\w])` + regexp.QuoteMeta(word) + `($|[^\w])`)
	return re.MatchString(text)
}

func formatOverview(projectContext *models.ProjectContext) string {
	var sb strings.Builder
	sb.WriteString("# Project Overview\n\n")
	sb.WriteString(fmt.Sprintf("Root: %s\n", projectContext.Root))
	sb.WriteString(fmt.Sprintf("Scanned at: %s\n", projectContext.ScannedAt.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Files: %d of %d included (%d lines in total)\n",
		len(projectContext.Files), projectContext.TotalFiles, projectContext.TotalLines))
	if projectContext.Truncated {
		sb.WriteString("Note: the context was cut to fit the token budget; some files are missing or incomplete.\n")
	}
	return sb.String()
}

func formatFileContents(projectContext *models.ProjectContext, mentioned []string) string {
	numbered := make(map[string]bool, len(mentioned))
	for _, p := range mentioned {
		numbered[p] = true
	}

	var sb strings.Builder
	sb.WriteString("# File Contents\n")
	if len(mentioned) > 0 {
		sb.WriteString(fmt.Sprintf("\nFiles referenced in the question (shown with line numbers): %s\n", strings.Join(mentioned, ", ")))
	}

	for _, file := range projectContext.Files {
		header := fmt.Sprintf("\n## %s (%d lines", file.Path, file.Lines)
		if file.Truncated {
			header += ", truncated"
		}
		sb.WriteString(header + ")\n\n")

		content := file.Content
		if numbered[file.Path] {
			content = WithLineNumbers(content)
		}
		fence := codeFence(content)
		sb.WriteString(fence + utils.GetSupportedLanguage(file.Path) + "\n")
		sb.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString(fence + "\n")
	}
	return sb.String()
}

// WithLineNumbers prefixes every line with its 1-based number.
func WithLineNumbers(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, line := range lines {
		lines[i] = fmt.Sprintf("%4d: %s", i+1, line)
	}
	return strings.Join(lines, "\n") + "\n"
}

// codeFence returns a backtick fence longer than any run inside content.
func codeFence(content string) string {
	fence := "```"
	for strings.Contains(content, fence) {
		fence += "`"
	}
	return fence
}

func includedPaths(projectContext *models.ProjectContext) []string {
	paths := make([]string, 0, len(projectContext.Files))
	for _, file := range projectContext.Files {
		paths = append(paths, file.Path)
	}
	return paths
}
