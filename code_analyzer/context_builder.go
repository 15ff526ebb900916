package code_analyzer

import (
	"errors"
	"fmt"
	"time"

	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/google/uuid"
)

var (
	// ErrBudgetBelowOverhead is returned when the budget cannot even hold the document header.
	ErrBudgetBelowOverhead = errors.New("budget is smaller than the context document overhead")
	// ErrNoScan is returned when Build is given no scan result.
	ErrNoScan = errors.New("no scan result to build from")
)

// prefixScanWindow bounds the linear search past the binary-search result. Quoting
// can make a prefix serialise a few characters longer than the next one.
const prefixScanWindow = 16

// BuildOption customises a Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	scanID    string
	scannedAt time.Time
}

// WithScanID fixes the scan identifier stamped on the document.
func WithScanID(id string) BuildOption {
	return func(c *buildConfig) {
		c.scanID = id
	}
}

// WithTimestamp fixes the scan timestamp stamped on the document.
func WithTimestamp(t time.Time) BuildOption {
	return func(c *buildConfig) {
		c.scannedAt = t
	}
}

// Build turns a scan result into a ProjectContext whose serialised length never
// exceeds budget characters.
//
// Files are taken in scan order. A file that fits is included whole. The first
// file that does not fit is cut to the longest prefix that still fits, and every
// file after it is omitted; the document is then flagged as truncated. Totals
// always describe the whole scan, not only what fitted.
func Build(scan *models.ScanResult, budget int, opts ...BuildOption) (*models.ProjectContext, error) {
	if scan == nil {
		return nil, ErrNoScan
	}

	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.scanID == "" {
		cfg.scanID = uuid.NewString()
	}
	if cfg.scannedAt.IsZero() {
		cfg.scannedAt = time.Now()
	}

	doc := &models.ProjectContext{
		ScanID:     cfg.scanID,
		Root:       scan.Root,
		ScannedAt:  cfg.scannedAt.UTC().Truncate(time.Second),
		TotalFiles: len(scan.Files),
		TotalLines: scan.TotalLines(),
		Files:      make([]models.FileSummary, 0, len(scan.Files)),
	}

	// Sizes are measured with truncated=false; flipping the flag to true only shortens the document.
	used, err := models.DocumentSize(doc)
	if err != nil {
		return nil, err
	}
	if used > budget {
		return nil, fmt.Errorf("%w: need %d characters, budget is %d", ErrBudgetBelowOverhead, used, budget)
	}

	for _, file := range scan.Files {
		entry := models.FileSummary{
			Path:      file.Path,
			Lines:     file.Lines,
			Size:      file.Size,
			Hash:      file.Hash,
			Truncated: file.Capped,
			Content:   file.Content,
		}

		size, err := sizeWith(doc, entry)
		if err != nil {
			return nil, err
		}
		if size <= budget {
			doc.Files = append(doc.Files, entry)
			used = size
			continue
		}

		doc.Truncated = true
		if used < budget {
			partial, ok, err := fitPrefix(doc, entry, budget)
			if err != nil {
				return nil, err
			}
			if ok {
				doc.Files = append(doc.Files, partial)
			}
		}
		break
	}

	return doc, nil
}

// fitPrefix finds the longest non-empty rune prefix of entry.Content that keeps
// the document within budget.
func fitPrefix(doc *models.ProjectContext, entry models.FileSummary, budget int) (models.FileSummary, bool, error) {
	runes := []rune(entry.Content)
	entry.Truncated = true

	candidate := func(n int) models.FileSummary {
		e := entry
		e.Content = string(runes[:n])
		return e
	}

	// Invariant: prefix lo fits (or lo == 0), prefix hi+1 does not.
	lo, hi := 0, len(runes)-1
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		size, err := sizeWith(doc, candidate(mid))
		if err != nil {
			return models.FileSummary{}, false, err
		}
		if size <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	// Serialised size is not strictly monotonic in the prefix length, so keep
	// looking a short distance past the last prefix that fitted.
	for n, misses := lo+1, 0; n < len(runes) && misses < prefixScanWindow; n++ {
		size, err := sizeWith(doc, candidate(n))
		if err != nil {
			return models.FileSummary{}, false, err
		}
		if size <= budget {
			lo, misses = n, 0
		} else {
			misses++
		}
	}
	if lo == 0 {
		return models.FileSummary{}, false, nil
	}

	best := candidate(lo)
	size, err := sizeWith(doc, best)
	if err != nil {
		return models.FileSummary{}, false, err
	}
	if size > budget {
		return models.FileSummary{}, false, nil
	}
	return best, true, nil
}

func sizeWith(doc *models.ProjectContext, entry models.FileSummary) (int, error) {
	trial := *doc
	trial.Truncated = false
	trial.Files = append(doc.Files[:len(doc.Files):len(doc.Files)], entry)
	return models.DocumentSize(&trial)
}
