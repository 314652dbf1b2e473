package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/botbase/internal/pkg/errcode"
	"github.com/xxxsen/botbase/internal/pkg/response"
	"github.com/xxxsen/botbase/internal/service"
)

type ChatHandler struct {
	bots *service.BotService
	chat *service.ChatService
}

func NewChatHandler(bots *service.BotService, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{bots: bots, chat: chat}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response    string `json:"response"`
	SourcesUsed int    `json:"sources_used"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	bot, err := h.bots.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.Error(c, errcode.ErrInvalid, "message required")
		return
	}
	answer, sourcesUsed, err := h.chat.Chat(c.Request.Context(), bot, req.Message)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chatResponse{Response: answer, SourcesUsed: sourcesUsed})
}
