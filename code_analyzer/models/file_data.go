package models

import "time"

// ScannedFile holds one included source file as read by the scanner.
type ScannedFile struct {
	// Path is relative to the scan root and always uses forward slashes.
	Path string
	// Content is the file text, possibly capped at the per-file byte cap.
	Content string
	// Lines is the line count of the whole file, computed before capping.
	Lines int
	// Size is the file size on disk in bytes.
	Size int64
	// Hash is the xxh3 hex digest of the whole file content.
	Hash string
	// Capped reports whether Content was cut at the per-file byte cap.
	Capped bool
}

// ScanResult is the ordered output of a single scan.
type ScanResult struct {
	Root    string
	Files   []ScannedFile
	Skipped []*FileReadError
}

// TotalLines sums the line counts of every scanned file.
func (r *ScanResult) TotalLines() int {
	total := 0
	for _, f := range r.Files {
		total += f.Lines
	}
	return total
}

// ProjectContext is the persisted, size-bounded summary of a scanned project.
// Field order here is the serialisation order of the stored document.
type ProjectContext struct {
	ScanID     string        `yaml:"scan_id"`
	Root       string        `yaml:"root"`
	ScannedAt  time.Time     `yaml:"scanned_at"`
	TotalFiles int           `yaml:"total_files"`
	TotalLines int           `yaml:"total_lines"`
	Truncated  bool          `yaml:"truncated"`
	Files      []FileSummary `yaml:"files"`
}

// FileSummary is one file entry of a ProjectContext.
type FileSummary struct {
	Path      string `yaml:"path"`
	Lines     int    `yaml:"lines"`
	Size      int64  `yaml:"size"`
	Hash      string `yaml:"hash"`
	Truncated bool   `yaml:"truncated"`
	Content   string `yaml:"content"`
}

// IncludedLines sums the line counts of the files present in the document.
func (c *ProjectContext) IncludedLines() int {
	total := 0
	for _, f := range c.Files {
		total += f.Lines
	}
	return total
}

// FindFile returns the entry for a relative path, if present.
func (c *ProjectContext) FindFile(path string) (*FileSummary, bool) {
	for i := range c.Files {
		if c.Files[i].Path == path {
			return &c.Files[i], true
		}
	}
	return nil, false
}

// FileChange describes how one file differs between a stored context and a fresh scan.
type FileChange struct {
	Path   string
	Kind   ChangeKind
	Before string
	After  string
}

// ChangeKind classifies a FileChange.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// ChangeSet is the result of comparing a stored context with the project on disk.
type ChangeSet struct {
	Changes []FileChange
	// Untracked counts scanned files that are absent from a truncated context,
	// so their state cannot be compared.
	Untracked int
}

// HasChanges reports whether any tracked file differs.
func (s *ChangeSet) HasChanges() bool {
	return len(s.Changes) > 0
}

// Symbol is one declaration found in a source file.
type Symbol struct {
	Kind string // "function", "method", "type", "class", ...
	Name string
	Line int // 1-based
}

// CacheStats counts lookups served from and missed by the symbol cache.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// HitRate returns the share of lookups served from the cache, in percent.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
