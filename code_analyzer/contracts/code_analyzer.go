package contracts

import "github.com/devcli/devcli/code_analyzer/models"

type ICodeAnalyzer interface {
	ProcessFile(filePath string, sourceCode []byte) []models.Symbol
	BuildRepoMap(projectContext *models.ProjectContext) string
	GeneratePrompt(projectContext *models.ProjectContext, history []string, userInput string, requestedContext string) (string, string)
	CacheStats() models.CacheStats
}
