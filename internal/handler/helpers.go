package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/botbase/internal/ai"
	"github.com/xxxsen/botbase/internal/middleware"
	"github.com/xxxsen/botbase/internal/pkg/errcode"
	appErr "github.com/xxxsen/botbase/internal/pkg/errors"
	"github.com/xxxsen/botbase/internal/pkg/response"
)

func accountID(c *gin.Context) string {
	return middleware.AccountID(c)
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("account_id", accountID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrBotNotFound):
		response.Error(c, errcode.ErrBotNotFound, "bot not found")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrBotLimitReached):
		response.Error(c, errcode.ErrBotLimitReached, "bot limit reached")
	case errors.Is(err, appErr.ErrUnsupportedFormat):
		response.Error(c, errcode.ErrUnsupportedFormat, "unsupported file format")
	case errors.Is(err, appErr.ErrEmptyContent):
		response.Error(c, errcode.ErrEmptyContent, "no text content found")
	case errors.Is(err, appErr.ErrSourceTooLarge):
		response.Error(c, errcode.ErrSourceTooLarge, "source file too large")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, errcode.ErrAIUnavailable, "ai provider unavailable")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
