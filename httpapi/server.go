// Package httpapi exposes the server's outer surface: the REST API for
// accounts, groups, history and files, plus the websocket endpoint the
// realtime protocol runs on.
package httpapi

import (
	"log/slog"

	"chat-relay/services"

	"github.com/gin-gonic/gin"
)

func NewRouter(
	log *slog.Logger,
	authService services.IAuthService,
	chatService services.IChatService,
	groupService services.IGroupService,
	uploadService services.IUploadService,
	queueCapacity int,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	authCtl := authController{auth: authService}
	historyCtl := historyController{chat: chatService}
	groupCtl := groupController{groups: groupService}
	fileCtl := fileController{uploads: uploadService}
	socketCtl := NewSocketController(log, chatService, queueCapacity)

	api := router.Group("/api")
	api.POST("/auth/register", authCtl.register)
	api.POST("/auth/login", authCtl.login)

	authed := api.Group("", requireAuth(authService))
	authed.GET("/users", authCtl.listUsers)
	authed.GET("/messages/:userId", historyCtl.privateHistory)
	authed.GET("/group-messages/:groupId", historyCtl.groupHistory)

	authed.POST("/groups", groupCtl.create)
	authed.GET("/groups", groupCtl.list)
	authed.GET("/groups/:groupId", groupCtl.get)

	authed.POST("/files/upload", fileCtl.upload)
	authed.GET("/files/download/:fileId", fileCtl.download)
	authed.GET("/files/:targetType/:targetId", fileCtl.list)

	router.GET("/ws", requireAuth(authService), socketCtl.Handle)
	return router
}
