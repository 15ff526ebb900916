package code_analyzer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, root, relativePath string, content []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(relativePath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, content, 0o644))
}

func scannedPaths(result *models.ScanResult) []string {
	paths := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestScan_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	result, err := Scan(missing, nil, 0)
	require.Error(t, err)
	assert.Nil(t, result)

	var scanErr *models.ScanError
	require.True(t, errors.As(err, &scanErr))
	assert.Equal(t, missing, scanErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestScan_RootIsAFile(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "file.txt", []byte("x"))

	_, err := Scan(filepath.Join(root, "file.txt"), nil, 0)
	var scanErr *models.ScanError
	assert.True(t, errors.As(err, &scanErr))
}

func TestScan_IgnoredTreeIsNeverRead(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "node_modules/pkg/index.js", []byte(strings.Repeat("module.exports = 1;\n", 500)))
	writeProjectFile(t, root, "node_modules/pkg/sentinel.bin", []byte{0x00, 0x01, 0x02})
	writeProjectFile(t, root, "src/app.js", []byte(strings.Repeat("console.log(1);\n", 10)))

	result, err := Scan(root, utils.NewIgnoreRuleSet([]string{"node_modules"}), 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app.js"}, scannedPaths(result))
	assert.Equal(t, 10, result.TotalLines())
	// neither the sentinel nor anything else under node_modules was even attempted
	assert.Empty(t, result.Skipped)
}

func TestScan_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"b.go", "a.go", "pkg/z.go", "pkg/a.go", "A.md"} {
		writeProjectFile(t, root, p, []byte("package x\n"))
	}

	first, err := Scan(root, nil, 0)
	require.NoError(t, err)
	second, err := Scan(root, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"A.md", "a.go", "b.go", "pkg/a.go", "pkg/z.go"}, scannedPaths(first))
	assert.Equal(t, first, second)
}

func TestScan_SkipsBinaryAndOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "image.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x1a})
	writeProjectFile(t, root, "latin1.txt", []byte{'c', 'a', 'f', 0xe9})
	writeProjectFile(t, root, "big.txt", []byte(strings.Repeat("a", 2048)))
	writeProjectFile(t, root, "ok.txt", []byte("fine\n"))

	result, err := Scan(root, nil, 0, WithMaxFileSize(1024))
	require.NoError(t, err)

	assert.Equal(t, []string{"latin1.txt", "ok.txt"}, scannedPaths(result))
	require.Len(t, result.Skipped, 2)

	reasons := map[string]error{}
	for _, skipped := range result.Skipped {
		reasons[skipped.Path] = skipped
	}
	assert.ErrorIs(t, reasons["image.png"], models.ErrBinaryFile)
	assert.ErrorIs(t, reasons["big.txt"], models.ErrFileTooLarge)
}

func TestScan_DecodesLatin1(t *testing.T) {
	root := t.TempDir()
	raw := []byte{'c', 'a', 'f', 0xe9, '\n', 'n', 0xe4, 'h', '\n'}
	writeProjectFile(t, root, "latin1.txt", raw)

	result, err := Scan(root, nil, 0)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	file := result.Files[0]
	assert.Equal(t, "café\nnäh\n", file.Content)
	assert.Equal(t, 2, file.Lines)
	assert.Equal(t, int64(len(raw)), file.Size)
	assert.Equal(t, HashContent(raw), file.Hash)
}

func TestScan_FollowsSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	writeProjectFile(t, target, "main.go", []byte("package main\n"))
	link := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.Symlink(target, link))

	result, err := Scan(link, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, scannedPaths(result))
}

func TestScan_ExcludesStoreDirectory(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, ".devcli/context.yaml", []byte("scan_id: x\n"))
	writeProjectFile(t, root, "main.go", []byte("package main\n"))

	result, err := Scan(root, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, scannedPaths(result))
}

func TestScan_ExtensionAllowList(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "main.go", []byte("package main\n"))
	writeProjectFile(t, root, "README.md", []byte("# readme\n"))
	writeProjectFile(t, root, "script.PY", []byte("print(1)\n"))

	result, err := Scan(root, nil, 0, WithExtensions([]string{"go", ".py"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "script.PY"}, scannedPaths(result))
}

func TestScan_CapKeepsFullLineCountAndHash(t *testing.T) {
	root := t.TempDir()
	content := []byte(strings.Repeat("line\n", 100))
	writeProjectFile(t, root, "long.txt", content)

	result, err := Scan(root, nil, 50)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	file := result.Files[0]
	assert.Len(t, file.Content, 50)
	assert.True(t, file.Capped)
	assert.Equal(t, 100, file.Lines)
	assert.Equal(t, int64(500), file.Size)
	assert.Equal(t, HashContent(content), file.Hash)
}

func TestCapContent_DoesNotSplitRunes(t *testing.T) {
	content := []byte("aé日本")

	capped, wasCapped := capContent(content, 4)
	assert.True(t, wasCapped)
	assert.Equal(t, "aé", string(capped))

	capped, wasCapped = capContent(content, 100)
	assert.False(t, wasCapped)
	assert.Equal(t, content, capped)
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(nil))
	assert.Equal(t, 1, CountLines([]byte("one")))
	assert.Equal(t, 1, CountLines([]byte("one\n")))
	assert.Equal(t, 2, CountLines([]byte("one\ntwo")))
	assert.Equal(t, 3, CountLines([]byte("\n\n\n")))
}

func TestHashContent(t *testing.T) {
	hash := HashContent([]byte("hello"))
	assert.Len(t, hash, 16)
	assert.Equal(t, hash, HashContent([]byte("hello")))
	assert.NotEqual(t, hash, HashContent([]byte("hello!")))
}
