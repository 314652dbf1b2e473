package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/botbase/internal/middleware"
)

type RouterDeps struct {
	Auth          *AuthHandler
	Bots          *BotHandler
	Sources       *SourceHandler
	Chat          *ChatHandler
	JWTSecret     []byte
	ChatRateLimit int
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/unlock", deps.Auth.Unlock)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/bots", deps.Bots.Create)
	authGroup.GET("/bots", deps.Bots.List)
	authGroup.GET("/bots/:id", deps.Bots.Get)
	authGroup.PUT("/bots/:id", deps.Bots.Update)
	authGroup.DELETE("/bots/:id", deps.Bots.Delete)

	authGroup.POST("/bots/:id/sources", deps.Sources.Upload)
	authGroup.POST("/bots/:id/sources/crawl", deps.Sources.Crawl)
	authGroup.GET("/bots/:id/sources", deps.Sources.List)
	authGroup.DELETE("/bots/:id/sources/:source_id", deps.Sources.Delete)

	chatGroup := authGroup.Group("")
	chatGroup.Use(middleware.RateLimit(deps.ChatRateLimit, time.Minute))
	chatGroup.POST("/bots/:id/chat", deps.Chat.Chat)
}
