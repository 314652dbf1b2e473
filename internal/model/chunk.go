package model

// Chunk is one embedded segment of a source document. Chunk indices within a
// source are contiguous starting at 0 and follow original document order.
// Chunks are immutable once written.
type Chunk struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"source_id"`
	BotID      string    `json:"bot_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}

// RetrievedChunk pairs a chunk with its similarity score for one query.
// It is never persisted.
type RetrievedChunk struct {
	Chunk
	Similarity float64 `json:"similarity"`
}
