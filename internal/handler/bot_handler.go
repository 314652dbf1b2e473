package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/botbase/internal/pkg/errcode"
	"github.com/xxxsen/botbase/internal/pkg/response"
	"github.com/xxxsen/botbase/internal/service"
)

type BotHandler struct {
	bots *service.BotService
}

func NewBotHandler(bots *service.BotService) *BotHandler {
	return &BotHandler{bots: bots}
}

type createBotRequest struct {
	Name string `json:"name"`
}

func (h *BotHandler) Create(c *gin.Context) {
	var req createBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	bot, err := h.bots.Create(c.Request.Context(), accountID(c), req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bot)
}

func (h *BotHandler) List(c *gin.Context) {
	bots, err := h.bots.List(c.Request.Context(), accountID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bots)
}

func (h *BotHandler) Get(c *gin.Context) {
	bot, err := h.bots.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bot)
}

func (h *BotHandler) Update(c *gin.Context) {
	var update service.BotUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	bot, err := h.bots.Update(c.Request.Context(), accountID(c), c.Param("id"), update)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bot)
}

func (h *BotHandler) Delete(c *gin.Context) {
	if err := h.bots.Delete(c.Request.Context(), accountID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
