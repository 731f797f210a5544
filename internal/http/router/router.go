package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/issuedesk/internal/http/handler/webhook"
	"basegraph.app/issuedesk/internal/http/middleware"
	"basegraph.app/issuedesk/internal/service"
	"basegraph.app/issuedesk/internal/slackauth"
)

type RouterConfig struct {
	Verifier     *slackauth.Verifier
	MaxBodyBytes int64
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	slackGroup := router.Group("/slack", middleware.SlackAuth(cfg.Verifier, cfg.MaxBodyBytes))
	{
		commandHandler := webhook.NewSlackCommandHandler(services.Commands())
		interactionHandler := webhook.NewSlackInteractionHandler(services.Submissions())
		SlackRouter(slackGroup, commandHandler, interactionHandler)
	}
}
