// Package context_store persists the project context document under the
// project's hidden .devcli directory.
//
// Writes go to a temporary file in the destination directory which is then
// renamed over the target, so readers never observe a partially written
// document and a failed save leaves any previous document untouched.
package context_store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devcli/devcli/code_analyzer"
	"github.com/devcli/devcli/code_analyzer/models"
)

// DefaultFileName is the name of the context document inside the store directory.
const DefaultFileName = "context.yaml"

// DefaultPath returns the context document location for a project root.
func DefaultPath(root string) string {
	return filepath.Join(root, code_analyzer.StoreDirName, DefaultFileName)
}

// Locate returns the context document of the nearest directory at or above start
// that has one, or DefaultPath(start) when none does.
func Locate(start string) string {
	dir := filepath.Clean(start)
	for {
		candidate := DefaultPath(dir)
		if Exists(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return DefaultPath(start)
		}
		dir = parent
	}
}

// Save writes ctx to destinationPath, creating parent directories as needed and
// atomically replacing any existing document.
func Save(ctx *models.ProjectContext, destinationPath string) (err error) {
	data, err := models.MarshalContext(ctx)
	if err != nil {
		return &ContextSaveError{Path: destinationPath, Err: err}
	}

	dir := filepath.Dir(destinationPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ContextSaveError{Path: destinationPath, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destinationPath)+".*.tmp")
	if err != nil {
		return &ContextSaveError{Path: destinationPath, Err: err}
	}
	tmpPath := tmp.Name()

	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return &ContextSaveError{Path: destinationPath, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &ContextSaveError{Path: destinationPath, Err: err}
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return &ContextSaveError{Path: destinationPath, Err: err}
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return &ContextSaveError{Path: destinationPath, Err: err}
	}
	if err = os.Rename(tmpPath, destinationPath); err != nil {
		return &ContextSaveError{Path: destinationPath, Err: err}
	}

	return nil
}

// Load reads and validates the document at sourcePath.
func Load(sourcePath string) (*models.ProjectContext, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ContextLoadError{Path: sourcePath, Err: ErrContextNotFound}
		}
		return nil, &ContextLoadError{Path: sourcePath, Err: err}
	}

	ctx, err := models.UnmarshalContext(data)
	if err != nil {
		return nil, &ContextLoadError{Path: sourcePath, Err: err}
	}
	return ctx, nil
}

// Exists reports whether a document is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the document at path and its directory when that is left empty.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete context file: %w", err)
	}

	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	if len(entries) == 0 {
		if err := os.Remove(dir); err != nil {
			return fmt.Errorf("failed to delete empty directory %s: %w", dir, err)
		}
	}
	return nil
}

// StoreStats summarises a saved document.
type StoreStats struct {
	Path          string
	SizeBytes     int64
	ModTime       time.Time
	ScanID        string
	ScannedAt     time.Time
	IncludedFiles int
	TotalFiles    int
	TotalLines    int
	Truncated     bool
}

// Stats loads the document at path and reports its size and contents.
func Stats(path string) (*StoreStats, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ContextLoadError{Path: path, Err: ErrContextNotFound}
		}
		return nil, &ContextLoadError{Path: path, Err: err}
	}

	ctx, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &StoreStats{
		Path:          path,
		SizeBytes:     info.Size(),
		ModTime:       info.ModTime(),
		ScanID:        ctx.ScanID,
		ScannedAt:     ctx.ScannedAt,
		IncludedFiles: len(ctx.Files),
		TotalFiles:    ctx.TotalFiles,
		TotalLines:    ctx.TotalLines,
		Truncated:     ctx.Truncated,
	}, nil
}
