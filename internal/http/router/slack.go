package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/issuedesk/internal/http/handler/webhook"
)

func SlackRouter(router *gin.RouterGroup, commands *webhook.SlackCommandHandler, interactions *webhook.SlackInteractionHandler) {
	router.POST("/commands", commands.HandleCommand)
	router.POST("/interactions", interactions.HandleInteraction)
}
