package contracts

type ITokenManagement interface {
	UsedTokens(inputToken int, outputToken int)
	EstimateTokens(text string) int
	ContextWindow(model string) (int, bool)
	DisplayTokens(chatModel string)
	GetCurrentTokenUsage() (total int, input int, output int)
	ClearToken()
}
