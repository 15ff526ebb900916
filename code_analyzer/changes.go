package code_analyzer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/pmezard/go-difflib/difflib"
)

const diffContextLines = 3

// DetectChanges compares a stored context with a fresh scan of the same project.
// Files are compared by content hash. When the stored context is truncated, scanned
// files that are absent from it cannot be classified and are only counted.
func DetectChanges(stored *models.ProjectContext, scan *models.ScanResult) *models.ChangeSet {
	set := &models.ChangeSet{}

	scanned := make(map[string]struct{}, len(scan.Files))
	for _, file := range scan.Files {
		scanned[file.Path] = struct{}{}

		entry, ok := stored.FindFile(file.Path)
		if !ok {
			if stored.Truncated {
				set.Untracked++
				continue
			}
			set.Changes = append(set.Changes, models.FileChange{Path: file.Path, Kind: models.ChangeAdded, After: file.Content})
			continue
		}

		if !sameContent(entry, file) {
			after := file.Content
			if entry.Truncated {
				after = runePrefix(after, utf8.RuneCountInString(entry.Content))
			}
			set.Changes = append(set.Changes, models.FileChange{
				Path:   file.Path,
				Kind:   models.ChangeModified,
				Before: entry.Content,
				After:  after,
			})
		}
	}

	for _, entry := range stored.Files {
		if _, ok := scanned[entry.Path]; !ok {
			set.Changes = append(set.Changes, models.FileChange{Path: entry.Path, Kind: models.ChangeRemoved, Before: entry.Content})
		}
	}

	return set
}

func sameContent(entry *models.FileSummary, file models.ScannedFile) bool {
	if entry.Hash != "" {
		return entry.Hash == file.Hash
	}
	// Documents without hashes can only be compared on the stored text.
	if entry.Truncated {
		return runePrefix(file.Content, utf8.RuneCountInString(entry.Content)) == entry.Content
	}
	return entry.Content == file.Content
}

func runePrefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// UnifiedDiff renders a change as a unified diff against the stored text.
func UnifiedDiff(change models.FileChange) (string, error) {
	fromFile, toFile := "a/"+change.Path, "b/"+change.Path
	switch change.Kind {
	case models.ChangeAdded:
		fromFile = "/dev/null"
	case models.ChangeRemoved:
		toFile = "/dev/null"
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(change.Before),
		B:        splitLines(change.After),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  diffContextLines,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", change.Path, err)
	}
	return diff, nil
}

// splitLines is difflib.SplitLines without the empty line it appends after a final newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := difflib.SplitLines(s)
	if strings.HasSuffix(s, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}
