package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/botbase/internal/ai"
	"github.com/xxxsen/botbase/internal/chunker"
	"github.com/xxxsen/botbase/internal/extract"
	"github.com/xxxsen/botbase/internal/filestore"
	"github.com/xxxsen/botbase/internal/model"
	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

type IngestService struct {
	sources      sourceStore
	chunks       chunkStore
	splitter     *chunker.Splitter
	embedder     ai.IEmbedder
	store        filestore.Store
	keepRawFiles bool
	maxSizeBytes int64
}

type IngestResult struct {
	SourceID      string `json:"source_id"`
	ChunksCreated int    `json:"chunks_created"`
}

func NewIngestService(sources sourceStore, chunks chunkStore, splitter *chunker.Splitter, embedder ai.IEmbedder, store filestore.Store, keepRawFiles bool, maxSizeBytes int64) *IngestService {
	return &IngestService{
		sources:      sources,
		chunks:       chunks,
		splitter:     splitter,
		embedder:     embedder,
		store:        store,
		keepRawFiles: keepRawFiles,
		maxSizeBytes: maxSizeBytes,
	}
}

// Ingest runs the upload pipeline for one file: resolve the source type from
// the filename, then hand off to IngestRaw.
func (s *IngestService) Ingest(ctx context.Context, bot *model.Bot, filename string, raw []byte) (*IngestResult, error) {
	sourceType, err := extract.TypeFromFilename(filename)
	if err != nil {
		return nil, err
	}
	return s.IngestRaw(ctx, bot, filename, sourceType, raw)
}

// IngestRaw extracts, chunks, embeds and persists one document. Validation
// failures (format, size, empty content) are reported before any row is
// written. Once the source row exists, an embedding failure aborts the run
// and leaves the source in processing with whatever chunks were already
// stored; a scheduled cleanup marks such sources as errored later.
func (s *IngestService) IngestRaw(ctx context.Context, bot *model.Bot, name, sourceType string, raw []byte) (*IngestResult, error) {
	if s.maxSizeBytes > 0 && int64(len(raw)) > s.maxSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes", appErr.ErrSourceTooLarge, len(raw))
	}
	extracted, err := extract.Extract(sourceType, raw)
	if err != nil {
		return nil, err
	}
	pieces := s.splitter.Split(extracted.Text)
	if len(pieces) == 0 {
		return nil, appErr.ErrEmptyContent
	}

	source := &model.Source{
		ID:     newID(),
		BotID:  bot.ID,
		Name:   name,
		Type:   sourceType,
		Status: model.SourceStatusProcessing,
		Ctime:  time.Now().Unix(),
	}
	if err := s.sources.Create(ctx, source); err != nil {
		return nil, err
	}
	s.saveRaw(ctx, source.ID, raw)

	logger := logutil.GetLogger(ctx).With(
		zap.String("source_id", source.ID),
		zap.String("bot_id", bot.ID),
	)
	for idx, content := range pieces {
		embedding, err := s.embedder.Embed(ctx, content, ai.TaskTypeDocument)
		if err != nil {
			logger.Error("embed chunk failed, source left in processing",
				zap.Int("chunk_index", idx), zap.Error(err))
			return nil, err
		}
		chunk := &model.Chunk{
			ID:         newID(),
			SourceID:   source.ID,
			BotID:      bot.ID,
			ChunkIndex: idx,
			Content:    content,
			Embedding:  embedding,
		}
		if err := s.chunks.Insert(ctx, chunk); err != nil {
			logger.Error("persist chunk failed, source left in processing",
				zap.Int("chunk_index", idx), zap.Error(err))
			return nil, err
		}
	}
	if err := s.sources.UpdateStatus(ctx, source.ID, model.SourceStatusCompleted); err != nil {
		return nil, err
	}
	if !s.keepRawFiles {
		s.deleteRaw(ctx, source.ID)
	}
	logger.Info("source ingested",
		zap.String("name", name),
		zap.String("type", sourceType),
		zap.Int("chunks", len(pieces)),
		zap.Int("pages", extracted.Pages),
	)
	return &IngestResult{SourceID: source.ID, ChunksCreated: len(pieces)}, nil
}

func (s *IngestService) ListSources(ctx context.Context, botID string) ([]model.SourceWithCount, error) {
	return s.sources.ListByBot(ctx, botID)
}

func (s *IngestService) DeleteSource(ctx context.Context, botID, sourceID string) error {
	if err := s.sources.Delete(ctx, botID, sourceID); err != nil {
		return err
	}
	s.deleteRaw(ctx, sourceID)
	return nil
}

func (s *IngestService) saveRaw(ctx context.Context, sourceID string, raw []byte) {
	if s.store == nil {
		return
	}
	reader := bytes.NewReader(raw)
	if err := s.store.Save(ctx, sourceID, reader, int64(len(raw))); err != nil {
		logutil.GetLogger(ctx).Warn("save raw source failed",
			zap.String("source_id", sourceID), zap.Error(err))
	}
}

func (s *IngestService) deleteRaw(ctx context.Context, sourceID string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, sourceID); err != nil {
		logutil.GetLogger(ctx).Warn("delete raw source failed",
			zap.String("source_id", sourceID), zap.Error(err))
	}
}
