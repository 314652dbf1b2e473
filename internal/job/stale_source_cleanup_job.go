package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/botbase/internal/model"
	"github.com/xxxsen/botbase/internal/repo"
)

const staleSourceBatch = 100

// StaleSourceCleanupJob marks sources stuck in processing past maxAgeMins
// as errored and drops whatever chunks an aborted ingestion left behind.
type StaleSourceCleanupJob struct {
	sources    *repo.SourceRepo
	chunks     *repo.ChunkRepo
	maxAgeMins int
}

func NewStaleSourceCleanupJob(sources *repo.SourceRepo, chunks *repo.ChunkRepo, maxAgeMins int) *StaleSourceCleanupJob {
	return &StaleSourceCleanupJob{sources: sources, chunks: chunks, maxAgeMins: maxAgeMins}
}

func (j *StaleSourceCleanupJob) Name() string {
	return "stale_source_cleanup"
}

func (j *StaleSourceCleanupJob) Run(ctx context.Context) error {
	if j.sources == nil || j.chunks == nil {
		return nil
	}
	maxAgeMins := j.maxAgeMins
	if maxAgeMins <= 0 {
		maxAgeMins = 120
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeMins) * time.Minute).Unix()
	stale, err := j.sources.ListStale(ctx, cutoff, staleSourceBatch)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	for _, source := range stale {
		deleted, err := j.chunks.DeleteBySource(ctx, source.ID)
		if err != nil {
			return err
		}
		if err := j.sources.UpdateStatus(ctx, source.ID, model.SourceStatusError); err != nil {
			return err
		}
		logger.Info("stale source errored",
			zap.String("source_id", source.ID),
			zap.String("bot_id", source.BotID),
			zap.Int64("chunks_deleted", deleted),
		)
	}
	return nil
}
