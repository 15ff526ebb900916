package models

import (
	"errors"
	"fmt"
)

// Sentinel reasons for skipped files.
var (
	ErrBinaryFile   = errors.New("binary content")
	ErrFileTooLarge = errors.New("file exceeds size ceiling")
)

// ScanError reports that the scan root itself could not be used.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// FileReadError records a single file or directory the scanner skipped.
// It never aborts a scan.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("skipped %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}
