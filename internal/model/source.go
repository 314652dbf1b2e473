package model

const (
	SourceTypePDF      = "pdf"
	SourceTypeTxt      = "txt"
	SourceTypeDocx     = "docx"
	SourceTypeHTML     = "html"
	SourceTypeMarkdown = "md"
)

const (
	SourceStatusProcessing = "processing"
	SourceStatusCompleted  = "completed"
	SourceStatusError      = "error"
)

type Source struct {
	ID     string `json:"id"`
	BotID  string `json:"bot_id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Ctime  int64  `json:"ctime"`
}

// SourceWithCount is a Source joined with its chunk count for listings.
type SourceWithCount struct {
	Source
	ChunkCount int `json:"chunk_count"`
}
