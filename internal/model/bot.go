package model

type Bot struct {
	ID                  string  `json:"id"`
	AccountID           string  `json:"account_id"`
	Name                string  `json:"name"`
	SystemPrompt        string  `json:"system_prompt"`
	Temperature         float64 `json:"temperature"`
	MaxTokens           int     `json:"max_tokens"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MatchLimit          int     `json:"match_limit"`
	Ctime               int64   `json:"ctime"`
}
