package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/botbase/internal/model"
	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
	"github.com/xxxsen/botbase/internal/repo"
)

const (
	defaultSystemPrompt        = "You are a helpful assistant."
	defaultTemperature         = 0.7
	defaultMaxTokens           = 1024
	defaultSimilarityThreshold = 0.7
	defaultMatchLimit          = 5
	maxBotNameLen              = 100
)

type BotService struct {
	bots     *repo.BotRepo
	botLimit int
}

func NewBotService(bots *repo.BotRepo, botLimit int) *BotService {
	return &BotService{bots: bots, botLimit: botLimit}
}

type BotUpdate struct {
	Name                *string  `json:"name"`
	SystemPrompt        *string  `json:"system_prompt"`
	Temperature         *float64 `json:"temperature"`
	MaxTokens           *int     `json:"max_tokens"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	MatchLimit          *int     `json:"match_limit"`
}

func (s *BotService) Create(ctx context.Context, accountID, name string) (*model.Bot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: bot name is required", appErr.ErrInvalid)
	}
	if len(name) > maxBotNameLen {
		return nil, fmt.Errorf("%w: bot name too long", appErr.ErrInvalid)
	}
	if s.botLimit > 0 {
		count, err := s.bots.CountByAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if count >= s.botLimit {
			return nil, appErr.ErrBotLimitReached
		}
	}
	bot := &model.Bot{
		ID:                  newID(),
		AccountID:           accountID,
		Name:                name,
		SystemPrompt:        defaultSystemPrompt,
		Temperature:         defaultTemperature,
		MaxTokens:           defaultMaxTokens,
		SimilarityThreshold: defaultSimilarityThreshold,
		MatchLimit:          defaultMatchLimit,
		Ctime:               time.Now().Unix(),
	}
	if err := s.bots.Create(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *BotService) Get(ctx context.Context, accountID, botID string) (*model.Bot, error) {
	bot, err := s.bots.GetByID(ctx, botID)
	if err != nil {
		return nil, err
	}
	if bot.AccountID != accountID {
		return nil, appErr.ErrBotNotFound
	}
	return bot, nil
}

func (s *BotService) List(ctx context.Context, accountID string) ([]model.Bot, error) {
	return s.bots.ListByAccount(ctx, accountID)
}

func (s *BotService) Update(ctx context.Context, accountID, botID string, update BotUpdate) (*model.Bot, error) {
	bot, err := s.Get(ctx, accountID, botID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" || len(name) > maxBotNameLen {
			return nil, fmt.Errorf("%w: invalid bot name", appErr.ErrInvalid)
		}
		bot.Name = name
	}
	if update.SystemPrompt != nil {
		bot.SystemPrompt = *update.SystemPrompt
	}
	if update.Temperature != nil {
		if *update.Temperature < 0 || *update.Temperature > 2 {
			return nil, fmt.Errorf("%w: temperature must be within [0, 2]", appErr.ErrInvalid)
		}
		bot.Temperature = *update.Temperature
	}
	if update.MaxTokens != nil {
		if *update.MaxTokens <= 0 {
			return nil, fmt.Errorf("%w: max_tokens must be positive", appErr.ErrInvalid)
		}
		bot.MaxTokens = *update.MaxTokens
	}
	if update.SimilarityThreshold != nil {
		if *update.SimilarityThreshold < 0 || *update.SimilarityThreshold > 1 {
			return nil, fmt.Errorf("%w: similarity_threshold must be within [0, 1]", appErr.ErrInvalid)
		}
		bot.SimilarityThreshold = *update.SimilarityThreshold
	}
	if update.MatchLimit != nil {
		if *update.MatchLimit <= 0 || *update.MatchLimit > 20 {
			return nil, fmt.Errorf("%w: match_limit must be within [1, 20]", appErr.ErrInvalid)
		}
		bot.MatchLimit = *update.MatchLimit
	}
	if err := s.bots.Update(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *BotService) Delete(ctx context.Context, accountID, botID string) error {
	if _, err := s.Get(ctx, accountID, botID); err != nil {
		return err
	}
	return s.bots.Delete(ctx, botID)
}
