package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/botbase/internal/model"
	"github.com/xxxsen/botbase/internal/pkg/dbutil"
	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

var botColumns = []string{
	"id", "account_id", "name", "system_prompt", "temperature",
	"max_tokens", "similarity_threshold", "match_limit", "ctime",
}

type BotRepo struct {
	db *sql.DB
}

func NewBotRepo(db *sql.DB) *BotRepo {
	return &BotRepo{db: db}
}

func (r *BotRepo) Create(ctx context.Context, bot *model.Bot) error {
	data := map[string]interface{}{
		"id":                   bot.ID,
		"account_id":           bot.AccountID,
		"name":                 bot.Name,
		"system_prompt":        bot.SystemPrompt,
		"temperature":          bot.Temperature,
		"max_tokens":           bot.MaxTokens,
		"similarity_threshold": bot.SimilarityThreshold,
		"match_limit":          bot.MatchLimit,
		"ctime":                bot.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("bots", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *BotRepo) GetByID(ctx context.Context, botID string) (*model.Bot, error) {
	sqlStr, args, err := builder.BuildSelect("bots", map[string]interface{}{"id": botID}, botColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrBotNotFound
	}
	var bot model.Bot
	if err := scanBot(rows, &bot); err != nil {
		return nil, err
	}
	return &bot, rows.Err()
}

func (r *BotRepo) ListByAccount(ctx context.Context, accountID string) ([]model.Bot, error) {
	where := map[string]interface{}{
		"account_id": accountID,
		"_orderby":   "ctime desc",
	}
	sqlStr, args, err := builder.BuildSelect("bots", where, botColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	bots := make([]model.Bot, 0)
	for rows.Next() {
		var bot model.Bot
		if err := scanBot(rows, &bot); err != nil {
			return nil, err
		}
		bots = append(bots, bot)
	}
	return bots, rows.Err()
}

func (r *BotRepo) CountByAccount(ctx context.Context, accountID string) (int, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(*) FROM bots WHERE account_id = ?", []interface{}{accountID})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BotRepo) Update(ctx context.Context, bot *model.Bot) error {
	update := map[string]interface{}{
		"name":                 bot.Name,
		"system_prompt":        bot.SystemPrompt,
		"temperature":          bot.Temperature,
		"max_tokens":           bot.MaxTokens,
		"similarity_threshold": bot.SimilarityThreshold,
		"match_limit":          bot.MatchLimit,
	}
	where := map[string]interface{}{"id": bot.ID}
	sqlStr, args, err := builder.BuildUpdate("bots", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrBotNotFound
	}
	return nil
}

// Delete removes the bot; sources and chunks go with it via cascade.
func (r *BotRepo) Delete(ctx context.Context, botID string) error {
	sqlStr, args := dbutil.Finalize("DELETE FROM bots WHERE id = ?", []interface{}{botID})
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrBotNotFound
	}
	return nil
}

func scanBot(rows *sql.Rows, bot *model.Bot) error {
	return rows.Scan(
		&bot.ID,
		&bot.AccountID,
		&bot.Name,
		&bot.SystemPrompt,
		&bot.Temperature,
		&bot.MaxTokens,
		&bot.SimilarityThreshold,
		&bot.MatchLimit,
		&bot.Ctime,
	)
}
