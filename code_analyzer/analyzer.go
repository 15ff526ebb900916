package code_analyzer

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/devcli/devcli/code_analyzer/contracts"
	"github.com/devcli/devcli/code_analyzer/models"
	"github.com/devcli/devcli/embed_data"
	"github.com/devcli/devcli/utils"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// maxSymbolsPerFile keeps the repository map compact for very large files.
const maxSymbolsPerFile = 40

// CodeAnalyzer extracts declarations from source files and composes prompts.
type CodeAnalyzer struct {
	Cwd string

	mu      sync.Mutex
	queries map[string]*sitter.Query
	cache   *SymbolCache
}

type treeSitterLanguage struct {
	language *sitter.Language
	query    []byte
}

var treeSitterLanguages = map[string]treeSitterLanguage{
	"go":         {golang.GetLanguage(), embed_data.GoQuery},
	"python":     {python.GetLanguage(), embed_data.PythonQuery},
	"java":       {java.GetLanguage(), embed_data.JavaQuery},
	"javascript": {javascript.GetLanguage(), embed_data.JavascriptQuery},
	"typescript": {typescript.GetLanguage(), embed_data.TypescriptQuery},
}

// NewCodeAnalyzer initializes a new CodeAnalyzer.
func NewCodeAnalyzer(cwd string) contracts.ICodeAnalyzer {
	return &CodeAnalyzer{
		Cwd:     cwd,
		queries: make(map[string]*sitter.Query),
		cache:   NewSymbolCache(),
	}
}

// ProcessFile lists the declarations of a file in source order. Languages with a
// tree-sitter grammar are parsed; Rust and Zig use line patterns; anything else yields nil.
func (analyzer *CodeAnalyzer) ProcessFile(filePath string, sourceCode []byte) []models.Symbol {
	if analyzer.cache != nil {
		if symbols, ok := analyzer.cache.Get(filePath, sourceCode); ok {
			return symbols
		}
	}

	symbols := analyzer.extractSymbols(filePath, sourceCode)
	if analyzer.cache != nil {
		analyzer.cache.Set(filePath, sourceCode, symbols)
	}
	return symbols
}

// CacheStats reports symbol cache usage for the session.
func (analyzer *CodeAnalyzer) CacheStats() models.CacheStats {
	if analyzer.cache == nil {
		return models.CacheStats{}
	}
	return analyzer.cache.Stats()
}

func (analyzer *CodeAnalyzer) extractSymbols(filePath string, sourceCode []byte) []models.Symbol {
	language := utils.GetSupportedLanguage(filePath)

	var symbols []models.Symbol
	switch language {
	case "rust":
		symbols = extractByPatterns(string(sourceCode), rustPatterns)
	case "zig":
		symbols = extractByPatterns(string(sourceCode), zigPatterns)
	default:
		tsLang, ok := treeSitterLanguages[language]
		if !ok {
			return nil
		}
		var err error
		symbols, err = analyzer.querySymbols(language, tsLang, sourceCode)
		if err != nil {
			return nil
		}
	}

	if len(symbols) > maxSymbolsPerFile {
		symbols = symbols[:maxSymbolsPerFile]
	}
	return symbols
}

func (analyzer *CodeAnalyzer) querySymbols(language string, tsLang treeSitterLanguage, sourceCode []byte) ([]models.Symbol, error) {
	query, err := analyzer.compiledQuery(language, tsLang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsLang.language)

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	var symbols []models.Symbol
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			symbols = append(symbols, models.Symbol{
				Kind: query.CaptureNameForId(capture.Index),
				Name: capture.Node.Content(sourceCode),
				Line: int(capture.Node.StartPoint().Row) + 1,
			})
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool {
		return symbols[i].Line < symbols[j].Line
	})
	return symbols, nil
}

// compiledQuery compiles each language's query once per analyzer.
func (analyzer *CodeAnalyzer) compiledQuery(language string, tsLang treeSitterLanguage) (*sitter.Query, error) {
	analyzer.mu.Lock()
	defer analyzer.mu.Unlock()

	if query, ok := analyzer.queries[language]; ok {
		return query, nil
	}
	query, err := sitter.NewQuery(tsLang.query, tsLang.language)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s query: %w", language, err)
	}
	analyzer.queries[language] = query
	return query, nil
}

// BuildRepoMap renders the declarations of every file in the context, in document order.
// Files without recognised declarations are left out.
func (analyzer *CodeAnalyzer) BuildRepoMap(projectContext *models.ProjectContext) string {
	if projectContext == nil {
		return ""
	}

	var sb strings.Builder
	for _, file := range projectContext.Files {
		symbols := analyzer.ProcessFile(file.Path, []byte(file.Content))
		if len(symbols) == 0 {
			continue
		}
		sb.WriteString(file.Path)
		sb.WriteString(":\n")
		for _, symbol := range symbols {
			sb.WriteString(fmt.Sprintf("  %s %s (line %d)\n", symbol.Kind, symbol.Name, symbol.Line))
		}
	}
	return sb.String()
}

type symbolPattern struct {
	kind string
	re   *regexp.Regexp
}

var rustPatterns = []symbolPattern{
	{"function", regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+(\w+)`)},
	{"struct", regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?struct\s+(\w+)`)},
	{"enum", regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?enum\s+(\w+)`)},
	{"trait", regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?trait\s+(\w+)`)},
	{"impl", regexp.MustCompile(`^\s*impl(?:\s*<[^>]*>)?\s+(?:\w+\s+for\s+)?(\w+)`)},
	{"mod", regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?mod\s+(\w+)`)},
	{"const", regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?const\s+(\w+)`)},
	{"static", regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?static\s+(\w+)`)},
}

// Order matters: container declarations are also plain consts.
var zigPatterns = []symbolPattern{
	{"test", regexp.MustCompile(`^\s*test\s+"([^"]+)"`)},
	{"struct", regexp.MustCompile(`^\s*(?:pub\s+)?const\s+(\w+)\s*=\s*(?:packed\s+|extern\s+)?struct`)},
	{"enum", regexp.MustCompile(`^\s*(?:pub\s+)?const\s+(\w+)\s*=\s*enum`)},
	{"union", regexp.MustCompile(`^\s*(?:pub\s+)?const\s+(\w+)\s*=\s*union`)},
	{"function", regexp.MustCompile(`^\s*(?:pub\s+)?(?:export\s+)?fn\s+(\w+)`)},
	{"const", regexp.MustCompile(`^\s*(?:pub\s+)?const\s+(\w+)`)},
	{"var", regexp.MustCompile(`^\s*(?:pub\s+)?var\s+(\w+)`)},
}

func extractByPatterns(sourceCode string, patterns []symbolPattern) []models.Symbol {
	var symbols []models.Symbol
	for i, line := range strings.Split(sourceCode, "\n") {
		for _, p := range patterns {
			if matches := p.re.FindStringSubmatch(line); matches != nil {
				symbols = append(symbols, models.Symbol{Kind: p.kind, Name: matches[1], Line: i + 1})
				break
			}
		}
	}
	return symbols
}
