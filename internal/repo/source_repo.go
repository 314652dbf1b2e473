package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/botbase/internal/model"
	"github.com/xxxsen/botbase/internal/pkg/dbutil"
	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

type SourceRepo struct {
	db *sql.DB
}

func NewSourceRepo(db *sql.DB) *SourceRepo {
	return &SourceRepo{db: db}
}

func (r *SourceRepo) Create(ctx context.Context, source *model.Source) error {
	data := map[string]interface{}{
		"id":     source.ID,
		"bot_id": source.BotID,
		"name":   source.Name,
		"type":   source.Type,
		"status": source.Status,
		"ctime":  source.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("sources", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *SourceRepo) GetByID(ctx context.Context, sourceID string) (*model.Source, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT id, bot_id, name, type, status, ctime FROM sources WHERE id = ?",
		[]interface{}{sourceID},
	)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var source model.Source
	if err := row.Scan(&source.ID, &source.BotID, &source.Name, &source.Type, &source.Status, &source.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &source, nil
}

// ListByBot returns the bot's sources newest first, each with its chunk count.
func (r *SourceRepo) ListByBot(ctx context.Context, botID string) ([]model.SourceWithCount, error) {
	sqlStr, args := dbutil.Finalize(`
		SELECT s.id, s.bot_id, s.name, s.type, s.status, s.ctime, COUNT(c.id)
		FROM sources s
		LEFT JOIN chunks c ON c.source_id = s.id
		WHERE s.bot_id = ?
		GROUP BY s.id, s.bot_id, s.name, s.type, s.status, s.ctime
		ORDER BY s.ctime DESC
	`, []interface{}{botID})
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.SourceWithCount, 0)
	for rows.Next() {
		var item model.SourceWithCount
		if err := rows.Scan(&item.ID, &item.BotID, &item.Name, &item.Type, &item.Status, &item.Ctime, &item.ChunkCount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *SourceRepo) UpdateStatus(ctx context.Context, sourceID, status string) error {
	sqlStr, args := dbutil.Finalize(
		"UPDATE sources SET status = ? WHERE id = ?",
		[]interface{}{status, sourceID},
	)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *SourceRepo) Delete(ctx context.Context, botID, sourceID string) error {
	sqlStr, args := dbutil.Finalize(
		"DELETE FROM sources WHERE id = ? AND bot_id = ?",
		[]interface{}{sourceID, botID},
	)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// ListStale returns sources stuck in processing since before cutoff. These are
// uploads whose embedding loop died halfway; the cleanup job sweeps them.
func (r *SourceRepo) ListStale(ctx context.Context, cutoff int64, limit int) ([]model.Source, error) {
	sqlStr, args := dbutil.Finalize(`
		SELECT id, bot_id, name, type, status, ctime
		FROM sources
		WHERE status = ? AND ctime < ?
		ORDER BY ctime ASC
		LIMIT ?
	`, []interface{}{model.SourceStatusProcessing, cutoff, limit})
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	sources := make([]model.Source, 0)
	for rows.Next() {
		var source model.Source
		if err := rows.Scan(&source.ID, &source.BotID, &source.Name, &source.Type, &source.Status, &source.Ctime); err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}
