package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/botbase/internal/pkg/errcode"
	"github.com/xxxsen/botbase/internal/pkg/response"
	"github.com/xxxsen/botbase/internal/service"
)

type SourceHandler struct {
	bots    *service.BotService
	ingest  *service.IngestService
	crawler *service.CrawlService
}

func NewSourceHandler(bots *service.BotService, ingest *service.IngestService, crawler *service.CrawlService) *SourceHandler {
	return &SourceHandler{bots: bots, ingest: ingest, crawler: crawler}
}

func (h *SourceHandler) Upload(c *gin.Context) {
	bot, err := h.bots.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrUploadFailed, "failed to open file")
		return
	}
	defer opened.Close()
	raw, err := io.ReadAll(opened)
	if err != nil {
		response.Error(c, errcode.ErrUploadFailed, "failed to read file")
		return
	}
	result, err := h.ingest.Ingest(c.Request.Context(), bot, file.Filename, raw)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

type crawlRequest struct {
	URL string `json:"url"`
}

func (h *SourceHandler) Crawl(c *gin.Context) {
	bot, err := h.bots.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	var req crawlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.crawler.Crawl(c.Request.Context(), bot, req.URL)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *SourceHandler) List(c *gin.Context) {
	bot, err := h.bots.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	sources, err := h.ingest.ListSources(c.Request.Context(), bot.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, sources)
}

func (h *SourceHandler) Delete(c *gin.Context) {
	bot, err := h.bots.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.ingest.DeleteSource(c.Request.Context(), bot.ID, c.Param("source_id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
