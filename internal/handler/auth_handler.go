package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/botbase/internal/pkg/errcode"
	"github.com/xxxsen/botbase/internal/pkg/response"
	"github.com/xxxsen/botbase/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type unlockRequest struct {
	AccessCode string `json:"access_code"`
}

func (h *AuthHandler) Unlock(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if strings.TrimSpace(req.AccessCode) == "" {
		response.Error(c, errcode.ErrInvalid, "access_code required")
		return
	}
	token, err := h.auth.Unlock(c.Request.Context(), req.AccessCode)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}
