package code_analyzer

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/utils"
	"github.com/pterm/pterm"
	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding/charmap"
)

const (
	// DefaultMaxFileSize is the ceiling above which files are skipped outright.
	DefaultMaxFileSize = 100_000
	// StoreDirName is the hidden project directory holding the saved context.
	StoreDirName = ".devcli"

	binarySniffLen = 8000
)

// DefaultExtensions is the source and text file allow-list used when nothing else is configured.
var DefaultExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx",
	".java", ".c", ".cpp", ".h", ".hpp",
	".go", ".rs", ".rb", ".php",
	".html", ".css", ".scss", ".sass",
	".json", ".yaml", ".yml", ".toml",
	".md", ".txt", ".sh", ".bash",
}

// ScanOption customises a Scan.
type ScanOption func(*scanConfig)

type scanConfig struct {
	maxFileSize int64
	extensions  map[string]struct{}
	logger      *pterm.Logger
}

// WithMaxFileSize overrides the size ceiling. Non-positive values keep the default.
func WithMaxFileSize(size int64) ScanOption {
	return func(c *scanConfig) {
		if size > 0 {
			c.maxFileSize = size
		}
	}
}

// WithExtensions restricts the scan to files with one of the given extensions.
// Extensions may be given with or without the leading dot.
func WithExtensions(exts []string) ScanOption {
	return func(c *scanConfig) {
		if len(exts) == 0 {
			return
		}
		c.extensions = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			c.extensions[ext] = struct{}{}
		}
	}
}

// WithLogger sets the logger that receives skipped-file records.
func WithLogger(logger *pterm.Logger) ScanOption {
	return func(c *scanConfig) {
		c.logger = logger
	}
}

type scanState struct {
	cfg    scanConfig
	root   string
	rules  *utils.IgnoreRuleSet
	capAt  int
	result *models.ScanResult
}

// Scan walks rootPath and returns every included text file in deterministic order.
// Entries are visited lexicographically within each directory; excluded directories
// are never descended into. Unreadable, binary and oversized files are recorded in
// ScanResult.Skipped and never abort the scan.
func Scan(rootPath string, rules *utils.IgnoreRuleSet, perFileByteCap int, opts ...ScanOption) (*models.ScanResult, error) {
	cfg := scanConfig{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, &models.ScanError{Path: rootPath, Err: err}
	}
	// WalkDir does not descend through a symlinked root.
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &models.ScanError{Path: root, Err: err}
	}
	root = resolved
	info, err := os.Stat(root)
	if err != nil {
		return nil, &models.ScanError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &models.ScanError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	// The saved context must never feed back into the next scan.
	storeRules := utils.NewIgnoreRuleSet([]string{StoreDirName + "/"})
	if rules != nil {
		storeRules.Append(rules)
	}

	state := &scanState{
		cfg:    cfg,
		root:   root,
		rules:  storeRules,
		capAt:  perFileByteCap,
		result: &models.ScanResult{Root: root, Files: []models.ScannedFile{}},
	}

	if err := filepath.WalkDir(root, state.visit); err != nil {
		return nil, &models.ScanError{Path: root, Err: err}
	}

	return state.result, nil
}

func (s *scanState) visit(path string, d fs.DirEntry, err error) error {
	if path == s.root {
		// The root itself failing to list is fatal.
		return err
	}

	relativePath, relErr := filepath.Rel(s.root, path)
	if relErr != nil {
		return nil
	}
	relativePath = filepath.ToSlash(relativePath)

	if err != nil {
		s.skip(relativePath, err)
		if d != nil && d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	if !utils.ShouldInclude(relativePath, d.IsDir(), s.rules) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	if d.IsDir() {
		return nil
	}
	if !d.Type().IsRegular() {
		// symlinks, sockets, devices
		return nil
	}
	if !s.extensionAllowed(relativePath) {
		return nil
	}

	s.readFile(path, relativePath, d)
	return nil
}

func (s *scanState) extensionAllowed(relativePath string) bool {
	if len(s.cfg.extensions) == 0 {
		return true
	}
	_, ok := s.cfg.extensions[strings.ToLower(filepath.Ext(relativePath))]
	return ok
}

func (s *scanState) readFile(path, relativePath string, d fs.DirEntry) {
	fileInfo, err := d.Info()
	if err != nil {
		s.skip(relativePath, err)
		return
	}
	if fileInfo.Size() > s.cfg.maxFileSize {
		s.skip(relativePath, fmt.Errorf("%w (%d > %d bytes)", models.ErrFileTooLarge, fileInfo.Size(), s.cfg.maxFileSize))
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		s.skip(relativePath, err)
		return
	}
	if isBinary(content) {
		s.skip(relativePath, models.ErrBinaryFile)
		return
	}
	text, err := decodeText(content)
	if err != nil {
		s.skip(relativePath, err)
		return
	}

	capped, wasCapped := capContent(text, s.capAt)

	s.result.Files = append(s.result.Files, models.ScannedFile{
		Path:    relativePath,
		Content: string(capped),
		Lines:   CountLines(content),
		Size:    fileInfo.Size(),
		Hash:    HashContent(content),
		Capped:  wasCapped,
	})
}

func (s *scanState) skip(relativePath string, err error) {
	readErr := &models.FileReadError{Path: relativePath, Err: err}
	s.result.Skipped = append(s.result.Skipped, readErr)
	if s.cfg.logger != nil {
		s.cfg.logger.Debug("skipping file", s.cfg.logger.Args("path", relativePath, "reason", err.Error()))
	}
}

// isBinary treats content with NUL bytes near the start as non-text.
func isBinary(content []byte) bool {
	sniff := content
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}

// decodeText returns content as UTF-8, reading anything that is not valid UTF-8 as Latin-1.
func decodeText(content []byte) ([]byte, error) {
	if utf8.Valid(content) {
		return content, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBinaryFile, err)
	}
	return decoded, nil
}

// capContent cuts content to at most limit bytes without splitting a UTF-8 sequence.
func capContent(content []byte, limit int) ([]byte, bool) {
	if limit <= 0 || len(content) <= limit {
		return content, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut], true
}

// CountLines counts newline-terminated lines plus a trailing unterminated one.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	lines := bytes.Count(content, []byte("\n"))
	if content[len(content)-1] != '\n' {
		lines++
	}
	return lines
}

// HashContent returns the xxh3 digest of content as 16 hex characters.
func HashContent(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}
