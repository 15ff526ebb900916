package models

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned when a stored context is structurally invalid.
var ErrInvalidDocument = errors.New("invalid context document")

const documentIndent = 2

// documentWire mirrors ProjectContext with pointer fields so that missing
// required keys can be told apart from zero values.
type documentWire struct {
	ScanID     *string     `yaml:"scan_id"`
	Root       *string     `yaml:"root"`
	ScannedAt  *time.Time  `yaml:"scanned_at"`
	TotalFiles *int        `yaml:"total_files"`
	TotalLines *int        `yaml:"total_lines"`
	Truncated  *bool       `yaml:"truncated"`
	Files      *[]fileWire `yaml:"files"`
}

type fileWire struct {
	Path      *string `yaml:"path"`
	Lines     *int    `yaml:"lines"`
	Size      int64   `yaml:"size"`
	Hash      string  `yaml:"hash"`
	Truncated bool    `yaml:"truncated"`
	Content   *string `yaml:"content"`
}

// fileEncoded is the on-disk layout of a FileSummary with an explicitly styled content node.
type fileEncoded struct {
	Path      string     `yaml:"path"`
	Lines     int        `yaml:"lines"`
	Size      int64      `yaml:"size"`
	Hash      string     `yaml:"hash"`
	Truncated bool       `yaml:"truncated"`
	Content   *yaml.Node `yaml:"content"`
}

// MarshalYAML writes content that begins with a newline or a space double-quoted;
// block scalars cannot carry leading blank lines or leading indentation.
func (f FileSummary) MarshalYAML() (interface{}, error) {
	return fileEncoded{
		Path:      f.Path,
		Lines:     f.Lines,
		Size:      f.Size,
		Hash:      f.Hash,
		Truncated: f.Truncated,
		Content:   contentNode(f.Content),
	}, nil
}

func contentNode(content string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: content}
	if strings.HasPrefix(content, "\n") || strings.HasPrefix(content, " ") {
		node.Style = yaml.DoubleQuotedStyle
	}
	return node
}

// MarshalContext encodes a ProjectContext in its stored YAML form.
func MarshalContext(ctx *ProjectContext) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(documentIndent)
	if err := encoder.Encode(ctx); err != nil {
		return nil, fmt.Errorf("error encoding context document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("error encoding context document: %w", err)
	}
	return buf.Bytes(), nil
}

// DocumentSize returns the serialised length of ctx in characters.
func DocumentSize(ctx *ProjectContext) (int, error) {
	data, err := MarshalContext(ctx)
	if err != nil {
		return 0, err
	}
	return utf8.RuneCount(data), nil
}

// UnmarshalContext decodes a stored document and checks that every required field is present.
func UnmarshalContext(data []byte) (*ProjectContext, error) {
	var wire documentWire
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	switch {
	case wire.ScanID == nil:
		return nil, missingField("scan_id")
	case wire.Root == nil:
		return nil, missingField("root")
	case wire.ScannedAt == nil:
		return nil, missingField("scanned_at")
	case wire.TotalFiles == nil:
		return nil, missingField("total_files")
	case wire.TotalLines == nil:
		return nil, missingField("total_lines")
	case wire.Truncated == nil:
		return nil, missingField("truncated")
	case wire.Files == nil:
		return nil, missingField("files")
	}

	ctx := &ProjectContext{
		ScanID:     *wire.ScanID,
		Root:       *wire.Root,
		ScannedAt:  wire.ScannedAt.UTC(),
		TotalFiles: *wire.TotalFiles,
		TotalLines: *wire.TotalLines,
		Truncated:  *wire.Truncated,
		Files:      make([]FileSummary, 0, len(*wire.Files)),
	}

	for i, f := range *wire.Files {
		switch {
		case f.Path == nil:
			return nil, missingField(fmt.Sprintf("files[%d].path", i))
		case f.Lines == nil:
			return nil, missingField(fmt.Sprintf("files[%d].lines", i))
		case f.Content == nil:
			return nil, missingField(fmt.Sprintf("files[%d].content", i))
		}
		ctx.Files = append(ctx.Files, FileSummary{
			Path:      *f.Path,
			Lines:     *f.Lines,
			Size:      f.Size,
			Hash:      f.Hash,
			Truncated: f.Truncated,
			Content:   *f.Content,
		})
	}

	return ctx, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing required field %q", ErrInvalidDocument, name)
}
