package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/botbase/internal/ai"
	"github.com/xxxsen/botbase/internal/chunker"
	"github.com/xxxsen/botbase/internal/model"
	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

type fakeSourceStore struct {
	created  []*model.Source
	statuses map[string]string
}

func newFakeSourceStore() *fakeSourceStore {
	return &fakeSourceStore{statuses: map[string]string{}}
}

func (f *fakeSourceStore) Create(ctx context.Context, source *model.Source) error {
	f.created = append(f.created, source)
	f.statuses[source.ID] = source.Status
	return nil
}

func (f *fakeSourceStore) UpdateStatus(ctx context.Context, sourceID, status string) error {
	f.statuses[sourceID] = status
	return nil
}

func (f *fakeSourceStore) ListByBot(ctx context.Context, botID string) ([]model.SourceWithCount, error) {
	return nil, nil
}

func (f *fakeSourceStore) Delete(ctx context.Context, botID, sourceID string) error {
	return nil
}

type failingEmbedder struct {
	fakeEmbedder
	failAt int
}

func (f *failingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if f.calls == f.failAt {
		f.calls++
		return nil, ai.ErrUnavailable
	}
	return f.fakeEmbedder.Embed(ctx, text, taskType)
}

func testSplitter() *chunker.Splitter {
	return chunker.New(chunker.Options{Mode: chunker.ModeWord, MinSize: 20, MaxSize: 60, Overlap: 0, MinTail: 1})
}

func ingestDoc() []byte {
	return []byte(strings.Repeat("every word counts here ", 10))
}

func TestIngest_SuccessPersistsOrderedChunks(t *testing.T) {
	sources := newFakeSourceStore()
	chunks := newFakeChunkStore()
	embedder := &fakeEmbedder{vec: []float32{0.5}}
	svc := NewIngestService(sources, chunks, testSplitter(), embedder, nil, false, 0)

	result, err := svc.Ingest(context.Background(), testBot(), "notes.txt", ingestDoc())
	require.NoError(t, err)
	require.Greater(t, result.ChunksCreated, 1)
	require.Len(t, chunks.inserted, result.ChunksCreated)
	require.Equal(t, result.ChunksCreated, embedder.calls)
	require.Equal(t, ai.TaskTypeDocument, embedder.lastTask)

	require.Len(t, sources.created, 1)
	source := sources.created[0]
	require.Equal(t, result.SourceID, source.ID)
	require.Equal(t, "bot1", source.BotID)
	require.Equal(t, model.SourceTypeTxt, source.Type)
	require.Equal(t, model.SourceStatusCompleted, sources.statuses[source.ID])

	for i, chunk := range chunks.inserted {
		require.Equal(t, i, chunk.ChunkIndex)
		require.Equal(t, source.ID, chunk.SourceID)
		require.Equal(t, "bot1", chunk.BotID)
		require.NotEmpty(t, chunk.Content)
		require.Equal(t, []float32{0.5}, chunk.Embedding)
	}
}

func TestIngest_UnsupportedFormatFailsBeforePersistence(t *testing.T) {
	sources := newFakeSourceStore()
	chunks := newFakeChunkStore()
	svc := NewIngestService(sources, chunks, testSplitter(), &fakeEmbedder{vec: []float32{1}}, nil, false, 0)

	_, err := svc.Ingest(context.Background(), testBot(), "archive.zip", ingestDoc())
	require.ErrorIs(t, err, appErr.ErrUnsupportedFormat)
	require.Empty(t, sources.created)
	require.Empty(t, chunks.inserted)
}

func TestIngest_EmptyContentFailsBeforePersistence(t *testing.T) {
	sources := newFakeSourceStore()
	chunks := newFakeChunkStore()
	svc := NewIngestService(sources, chunks, testSplitter(), &fakeEmbedder{vec: []float32{1}}, nil, false, 0)

	_, err := svc.Ingest(context.Background(), testBot(), "empty.txt", []byte("   \n\t "))
	require.ErrorIs(t, err, appErr.ErrEmptyContent)
	require.Empty(t, sources.created)
	require.Empty(t, chunks.inserted)
}

func TestIngest_OversizedFileRejected(t *testing.T) {
	sources := newFakeSourceStore()
	chunks := newFakeChunkStore()
	svc := NewIngestService(sources, chunks, testSplitter(), &fakeEmbedder{vec: []float32{1}}, nil, false, 16)

	_, err := svc.Ingest(context.Background(), testBot(), "big.txt", ingestDoc())
	require.ErrorIs(t, err, appErr.ErrSourceTooLarge)
	require.Empty(t, sources.created)
}

func TestIngest_EmbedFailureLeavesSourceProcessing(t *testing.T) {
	sources := newFakeSourceStore()
	chunks := newFakeChunkStore()
	embedder := &failingEmbedder{fakeEmbedder: fakeEmbedder{vec: []float32{1}}, failAt: 2}
	svc := NewIngestService(sources, chunks, testSplitter(), embedder, nil, false, 0)

	_, err := svc.Ingest(context.Background(), testBot(), "notes.txt", ingestDoc())
	require.ErrorIs(t, err, ai.ErrUnavailable)

	// The run aborts mid-stream: already embedded chunks stay, the source
	// is never promoted past processing.
	require.Len(t, sources.created, 1)
	source := sources.created[0]
	require.Equal(t, model.SourceStatusProcessing, sources.statuses[source.ID])
	require.Len(t, chunks.inserted, 2)
	for i, chunk := range chunks.inserted {
		require.Equal(t, i, chunk.ChunkIndex)
	}
}

func TestIngest_InsertFailureLeavesSourceProcessing(t *testing.T) {
	sources := newFakeSourceStore()
	chunks := newFakeChunkStore()
	chunks.insertFailAt = 1
	svc := NewIngestService(sources, chunks, testSplitter(), &fakeEmbedder{vec: []float32{1}}, nil, false, 0)

	_, err := svc.Ingest(context.Background(), testBot(), "notes.txt", ingestDoc())
	require.Error(t, err)
	require.Len(t, sources.created, 1)
	require.Equal(t, model.SourceStatusProcessing, sources.statuses[sources.created[0].ID])
	require.Len(t, chunks.inserted, 1)
}

func TestIngestRaw_DeclaredTypeBypassesFilenameMapping(t *testing.T) {
	sources := newFakeSourceStore()
	chunks := newFakeChunkStore()
	svc := NewIngestService(sources, chunks, testSplitter(), &fakeEmbedder{vec: []float32{1}}, nil, false, 0)

	page := []byte("<html><body><p>" + strings.Repeat("crawled page text ", 10) + "</p></body></html>")
	result, err := svc.IngestRaw(context.Background(), testBot(), "https://example.com/docs", model.SourceTypeHTML, page)
	require.NoError(t, err)
	require.Greater(t, result.ChunksCreated, 0)
	require.Equal(t, model.SourceTypeHTML, sources.created[0].Type)
	require.Equal(t, "https://example.com/docs", sources.created[0].Name)
}
