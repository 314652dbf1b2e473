package repo_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/botbase/internal/model"
	"github.com/xxxsen/botbase/internal/repo"
	"github.com/xxxsen/botbase/test/testutil"
)

const embeddingDim = 1536

// vec builds an embedding whose cosine similarity against vec(1, 0)
// is a/sqrt(a^2+b^2).
func vec(a, b float32) []float32 {
	v := make([]float32, embeddingDim)
	v[0] = a
	v[1] = b
	return v
}

func seedBotAndSource(t *testing.T, conn *sql.DB, botID, sourceID string) {
	t.Helper()
	ctx := context.Background()
	bots := repo.NewBotRepo(conn)
	sources := repo.NewSourceRepo(conn)
	require.NoError(t, bots.Create(ctx, &model.Bot{
		ID: botID, AccountID: "owner", Name: "bot", SystemPrompt: "p",
		Temperature: 0.7, MaxTokens: 512, SimilarityThreshold: 0.7, MatchLimit: 5,
		Ctime: time.Now().Unix(),
	}))
	require.NoError(t, sources.Create(ctx, &model.Source{
		ID: sourceID, BotID: botID, Name: "doc.txt", Type: model.SourceTypeTxt,
		Status: model.SourceStatusCompleted, Ctime: time.Now().Unix(),
	}))
}

func TestChunkRepoSearch_ThresholdAndOrdering(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "bots")

	ctx := context.Background()
	chunks := repo.NewChunkRepo(conn)
	seedBotAndSource(t, conn, "bot-1", "src-1")

	similarities := [][]float32{
		vec(1, 0),     // similarity 1.0
		vec(0.8, 0.6), // similarity 0.8
		vec(0.6, 0.8), // similarity 0.6
		vec(0, 1),     // similarity 0.0
	}
	for i, emb := range similarities {
		require.NoError(t, chunks.Insert(ctx, &model.Chunk{
			ID: "c" + string(rune('0'+i)), SourceID: "src-1", BotID: "bot-1",
			ChunkIndex: i, Content: "chunk", Embedding: emb,
		}))
	}
	query := vec(1, 0)

	got, err := chunks.Search(ctx, "bot-1", query, 0.7, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.GreaterOrEqual(t, got[0].Similarity, got[1].Similarity)

	// Lowering the threshold can only add matches.
	looser, err := chunks.Search(ctx, "bot-1", query, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, looser, 3)

	// The limit caps the result set after ordering.
	capped, err := chunks.Search(ctx, "bot-1", query, 0.5, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	require.InDelta(t, 1.0, capped[0].Similarity, 1e-6)
}

func TestChunkRepoSearch_EmptyCorpus(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "bots")

	chunks := repo.NewChunkRepo(conn)
	seedBotAndSource(t, conn, "bot-1", "src-1")

	got, err := chunks.Search(context.Background(), "bot-1", vec(1, 0), 0.7, 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestChunkRepoSearch_TieBreakByChunkIndex(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "bots")

	ctx := context.Background()
	chunks := repo.NewChunkRepo(conn)
	seedBotAndSource(t, conn, "bot-1", "src-1")

	for i := 2; i >= 0; i-- {
		require.NoError(t, chunks.Insert(ctx, &model.Chunk{
			ID: "tie" + string(rune('0'+i)), SourceID: "src-1", BotID: "bot-1",
			ChunkIndex: i, Content: "same", Embedding: vec(1, 0),
		}))
	}
	got, err := chunks.Search(ctx, "bot-1", vec(1, 0), 0.5, 5)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, match := range got {
		require.Equal(t, i, match.ChunkIndex)
	}
}

func TestChunkRepoSearch_ScopedToBot(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "bots")

	ctx := context.Background()
	chunks := repo.NewChunkRepo(conn)
	seedBotAndSource(t, conn, "bot-1", "src-1")
	seedBotAndSource(t, conn, "bot-2", "src-2")

	require.NoError(t, chunks.Insert(ctx, &model.Chunk{
		ID: "other", SourceID: "src-2", BotID: "bot-2",
		ChunkIndex: 0, Content: "foreign", Embedding: vec(1, 0),
	}))

	got, err := chunks.Search(ctx, "bot-1", vec(1, 0), 0.5, 5)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestChunkRepoDeleteBySource(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn, "bots")

	ctx := context.Background()
	chunks := repo.NewChunkRepo(conn)
	seedBotAndSource(t, conn, "bot-1", "src-1")

	for i := 0; i < 3; i++ {
		require.NoError(t, chunks.Insert(ctx, &model.Chunk{
			ID: "d" + string(rune('0'+i)), SourceID: "src-1", BotID: "bot-1",
			ChunkIndex: i, Content: "x", Embedding: vec(1, 0),
		}))
	}
	deleted, err := chunks.DeleteBySource(ctx, "src-1")
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)

	count, err := chunks.CountBySource(ctx, "src-1")
	require.NoError(t, err)
	require.Zero(t, count)
}
