package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/botbase/internal/ai"
	"github.com/xxxsen/botbase/internal/model"
	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
)

const (
	contextHeader  = "Use the following information to answer the user's question:"
	apologyMessage = "I apologize, but I could not generate a response."
)

type ChatService struct {
	chunks        chunkStore
	embedder      ai.IEmbedder
	generator     ai.IGenerator
	threshold     float64
	limit         int
	maxInputChars int
}

// NewChatService builds the retrieval side of the pipeline. threshold and
// limit are fallbacks for bots that carry no override of their own;
// maxInputChars caps the user message, zero means no cap.
func NewChatService(chunks chunkStore, embedder ai.IEmbedder, generator ai.IGenerator, threshold float64, limit int, maxInputChars int) *ChatService {
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	return &ChatService{
		chunks:        chunks,
		embedder:      embedder,
		generator:     generator,
		threshold:     threshold,
		limit:         limit,
		maxInputChars: maxInputChars,
	}
}

// Chat answers one user message with context retrieved from the bot's
// indexed sources. Retrieval failures are hard errors; a failed or empty
// completion degrades to a fixed apology so the caller always gets text.
func (s *ChatService) Chat(ctx context.Context, bot *model.Bot, message string) (string, int, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", 0, appErr.ErrInvalid
	}
	if s.maxInputChars > 0 && len(message) > s.maxInputChars {
		return "", 0, fmt.Errorf("%w: message exceeds %d chars", appErr.ErrInvalid, s.maxInputChars)
	}
	matches, err := s.retrieve(ctx, bot, message)
	if err != nil {
		return "", 0, err
	}
	prompt := assemblePrompt(bot.SystemPrompt, matches)
	answer, err := s.generator.Complete(ctx, ai.CompletionRequest{
		SystemPrompt: prompt,
		UserMessage:  message,
		Temperature:  bot.Temperature,
		MaxTokens:    bot.MaxTokens,
	})
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			logutil.GetLogger(ctx).Warn("completion failed, answering with apology",
				zap.String("bot_id", bot.ID), zap.Error(err))
		}
		return apologyMessage, len(matches), nil
	}
	return answer, len(matches), nil
}

func (s *ChatService) retrieve(ctx context.Context, bot *model.Bot, message string) ([]model.RetrievedChunk, error) {
	query, err := s.embedder.Embed(ctx, message, ai.TaskTypeQuery)
	if err != nil {
		return nil, err
	}
	threshold := bot.SimilarityThreshold
	if threshold <= 0 {
		threshold = s.threshold
	}
	limit := bot.MatchLimit
	if limit <= 0 {
		limit = s.limit
	}
	return s.chunks.Search(ctx, bot.ID, query, threshold, limit)
}

func assemblePrompt(systemPrompt string, matches []model.RetrievedChunk) string {
	if len(matches) == 0 {
		return systemPrompt
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Content)
	}
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	b.WriteString(contextHeader)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(parts, "\n\n"))
	return b.String()
}
