package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/botbase/internal/model"
	"github.com/xxxsen/botbase/internal/repo"
	"github.com/xxxsen/botbase/test/testutil"
)

func TestSourceRepoListWithChunkCounts(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "bots")

	ctx := context.Background()
	sources := repo.NewSourceRepo(conn)
	chunks := repo.NewChunkRepo(conn)
	seedBotAndSource(t, conn, "bot-1", "src-a")

	require.NoError(t, sources.Create(ctx, &model.Source{
		ID: "src-b", BotID: "bot-1", Name: "other.txt", Type: model.SourceTypeTxt,
		Status: model.SourceStatusCompleted, Ctime: time.Now().Unix() + 1,
	}))
	for i := 0; i < 2; i++ {
		require.NoError(t, chunks.Insert(ctx, &model.Chunk{
			ID: "lc" + string(rune('0'+i)), SourceID: "src-a", BotID: "bot-1",
			ChunkIndex: i, Content: "x", Embedding: vec(1, 0),
		}))
	}

	list, err := sources.ListByBot(ctx, "bot-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	counts := map[string]int{}
	for _, s := range list {
		counts[s.ID] = s.ChunkCount
	}
	require.Equal(t, 2, counts["src-a"])
	require.Equal(t, 0, counts["src-b"])
}

func TestSourceRepoStatusAndStale(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "bots")

	ctx := context.Background()
	sources := repo.NewSourceRepo(conn)
	bots := repo.NewBotRepo(conn)
	require.NoError(t, bots.Create(ctx, &model.Bot{
		ID: "bot-1", AccountID: "owner", Name: "bot", SystemPrompt: "p",
		Temperature: 0.7, MaxTokens: 512, SimilarityThreshold: 0.7, MatchLimit: 5,
		Ctime: time.Now().Unix(),
	}))
	old := time.Now().Add(-3 * time.Hour).Unix()
	require.NoError(t, sources.Create(ctx, &model.Source{
		ID: "stuck", BotID: "bot-1", Name: "stuck.txt", Type: model.SourceTypeTxt,
		Status: model.SourceStatusProcessing, Ctime: old,
	}))
	require.NoError(t, sources.Create(ctx, &model.Source{
		ID: "fresh", BotID: "bot-1", Name: "fresh.txt", Type: model.SourceTypeTxt,
		Status: model.SourceStatusProcessing, Ctime: time.Now().Unix(),
	}))

	cutoff := time.Now().Add(-2 * time.Hour).Unix()
	stale, err := sources.ListStale(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "stuck", stale[0].ID)

	require.NoError(t, sources.UpdateStatus(ctx, "stuck", model.SourceStatusError))
	got, err := sources.GetByID(ctx, "stuck")
	require.NoError(t, err)
	require.Equal(t, model.SourceStatusError, got.Status)

	stale, err = sources.ListStale(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Empty(t, stale)
}

func TestSourceRepoDeleteCascadesChunks(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "bots")

	ctx := context.Background()
	sources := repo.NewSourceRepo(conn)
	chunks := repo.NewChunkRepo(conn)
	seedBotAndSource(t, conn, "bot-1", "src-del")
	require.NoError(t, chunks.Insert(ctx, &model.Chunk{
		ID: "dc0", SourceID: "src-del", BotID: "bot-1",
		ChunkIndex: 0, Content: "x", Embedding: vec(1, 0),
	}))

	require.NoError(t, sources.Delete(ctx, "bot-1", "src-del"))
	count, err := chunks.CountBySource(ctx, "src-del")
	require.NoError(t, err)
	require.Zero(t, count)
}
