package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ChatApp/global"
	"ChatApp/logger"
	"ChatApp/middleware"
	midsec "ChatApp/middleware/security"
	chathandler "ChatApp/module/chat/handler"
	chatservice "ChatApp/module/chat/service"
	user "ChatApp/module/user"
	userservice "ChatApp/module/user/service"
	chat "ChatApp/service/chat"
	"ChatApp/service/media"
	mgoSrv "ChatApp/service/mgo"
)

func main() {
	cfg := global.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	global.ConfigAll(ctx)
	midsec.Configure(global.GetJwtOptions())

	// 启动阶段必须等到 Mongo 可用；起不来就没法服务
	waitCtx, waitCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := mgoSrv.WaitReady(waitCtx, mgoSrv.Manager()); err != nil {
		waitCancel()
		logger.Errorf("[Main] mongo not ready: %v lastErr=%v", err, mgoSrv.Err())
		os.Exit(1)
	}
	waitCancel()

	db := mgoSrv.GetDB()
	if err := userservice.EnsureIndexes(ctx, db); err != nil {
		logger.Warnf("[Main] user indexes: %v", err)
	}
	if err := chatservice.EnsureGroupIndexes(ctx, db); err != nil {
		logger.Warnf("[Main] group indexes: %v", err)
	}

	// ===== 实时核心 =====
	hub := chat.NewHub()
	go hub.Run()
	disp := chat.NewDispatcher(hub)
	wsServer := chat.NewServer(hub, disp, db)

	uploader := media.NewHTTPUploader(global.MediaConfig())

	userHandler := user.NewHandler(db, global.GetJwtOptions())
	msgHandler := chathandler.NewMessageHandler(db, uploader, disp)
	groupHandler := chathandler.NewGroupHandler(db, uploader)
	groupMsgHandler := chathandler.NewGroupMessageHandler(db, uploader, disp)

	r := gin.Default()
	r.Use(middleware.Origin())
	r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

	// ===== 路由 =====
	auth := r.Group("/api/auth")
	middleware.POST(auth, "/signup", userHandler.HandlerSignup, middleware.RouteOpt{})
	middleware.POST(auth, "/login", userHandler.HandlerLogin, middleware.RouteOpt{})

	users := r.Group("/api/users")
	middleware.GET(users, "/", userHandler.HandlerSearchUsers, middleware.RouteOpt{IsAuth: true})

	messages := r.Group("/api/messages")
	middleware.GET(messages, "/users", userHandler.HandlerSidebarUsers, middleware.RouteOpt{IsAuth: true})
	middleware.GET(messages, "/:id", msgHandler.HandlerGetMessages, middleware.RouteOpt{IsAuth: true})
	middleware.POST(messages, "/send/:id", msgHandler.HandlerSendMessage, middleware.RouteOpt{IsAuth: true})

	groups := r.Group("/api/groups")
	middleware.POST(groups, "/create", groupHandler.HandlerCreateGroup, middleware.RouteOpt{IsAuth: true})
	middleware.GET(groups, "/my", groupHandler.HandlerMyGroups, middleware.RouteOpt{IsAuth: true})
	middleware.GET(groups, "/", groupHandler.HandlerAllGroups, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(groups, "/rename", groupHandler.HandlerRenameGroup, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(groups, "/update-description", groupHandler.HandlerUpdateDescription, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(groups, "/update-profile", groupHandler.HandlerUpdateGroupProfile, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(groups, "/add-user", groupHandler.HandlerAddUserToGroup, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(groups, "/remove-user", groupHandler.HandlerRemoveUserFromGroup, middleware.RouteOpt{IsAuth: true})
	middleware.PUT(groups, "/leave", groupHandler.HandlerLeaveGroup, middleware.RouteOpt{IsAuth: true})
	middleware.DELETE(groups, "/:groupId", groupHandler.HandlerDeleteGroup, middleware.RouteOpt{IsAuth: true})

	groupMsgs := r.Group("/api/group-messages")
	middleware.POST(groupMsgs, "/send", groupMsgHandler.HandlerSendGroupMessage, middleware.RouteOpt{IsAuth: true})
	middleware.GET(groupMsgs, "/:groupId", groupMsgHandler.HandlerGetGroupMessages, middleware.RouteOpt{IsAuth: true})

	// WebSocket 握手走 query 参数鉴别身份，不套 JWT 中间件
	r.GET("/ws", wsServer.HandleWS)

	logger.Infof("[Main] listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Errorf("[Main] server exited: %v", err)
		os.Exit(1)
	}
}
