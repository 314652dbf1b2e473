package service

import (
	"context"

	"github.com/xxxsen/botbase/internal/model"
)

// Narrow persistence contracts for the ingestion and retrieval pipeline.
// The repo package satisfies both.
type sourceStore interface {
	Create(ctx context.Context, source *model.Source) error
	UpdateStatus(ctx context.Context, sourceID, status string) error
	ListByBot(ctx context.Context, botID string) ([]model.SourceWithCount, error)
	Delete(ctx context.Context, botID, sourceID string) error
}

type chunkStore interface {
	Insert(ctx context.Context, chunk *model.Chunk) error
	Search(ctx context.Context, botID string, query []float32, threshold float64, limit int) ([]model.RetrievedChunk, error)
}
