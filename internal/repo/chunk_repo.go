package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/botbase/internal/model"
	"github.com/xxxsen/botbase/internal/pkg/dbutil"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Insert(ctx context.Context, chunk *model.Chunk) error {
	const query = `
		INSERT INTO chunks (id, source_id, bot_id, chunk_index, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		chunk.ID,
		chunk.SourceID,
		chunk.BotID,
		chunk.ChunkIndex,
		chunk.Content,
		pgvector.NewVector(chunk.Embedding),
	)
	return err
}

// Search runs a cosine-similarity scan over one bot's chunks. Results carry
// similarity >= threshold, ordered best first; equal scores fall back to
// chunk_index so repeated queries return a stable order.
func (r *ChunkRepo) Search(ctx context.Context, botID string, query []float32, threshold float64, limit int) ([]model.RetrievedChunk, error) {
	const sqlStr = `
		SELECT id, source_id, bot_id, chunk_index, content,
		       1 - (embedding <=> $1) AS similarity
		FROM chunks
		WHERE bot_id = $2 AND 1 - (embedding <=> $1) >= $3
		ORDER BY similarity DESC, chunk_index ASC
		LIMIT $4
	`
	rows, err := r.db.QueryContext(ctx, sqlStr, pgvector.NewVector(query), botID, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	matches := make([]model.RetrievedChunk, 0, limit)
	for rows.Next() {
		var match model.RetrievedChunk
		if err := rows.Scan(&match.ID, &match.SourceID, &match.BotID, &match.ChunkIndex, &match.Content, &match.Similarity); err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *ChunkRepo) CountBySource(ctx context.Context, sourceID string) (int, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(*) FROM chunks WHERE source_id = ?", []interface{}{sourceID})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChunkRepo) DeleteBySource(ctx context.Context, sourceID string) (int64, error) {
	sqlStr, args := dbutil.Finalize("DELETE FROM chunks WHERE source_id = ?", []interface{}{sourceID})
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
