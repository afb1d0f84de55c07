package handler

import (
	"context"
	"net/http"
	"time"

	"studyhub/pkg/jwt"
	"studyhub/pkg/logger"
	"studyhub/pkg/metrics"
	"studyhub/pkg/response"
	"studyhub/pkg/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	User      *UserHandler
	Friend    *FriendHandler
	Message   *MessageHandler
	Activity  *ActivityHandler
	Goal      *GoalHandler
	Note      *NoteHandler
	Memory    *MemoryHandler
	Analytics *AnalyticsHandler
	WebSocket *websocket.Handler // 为nil时不注册 /ws
}

// RouterOptions 路由的外围配置
type RouterOptions struct {
	AllowedOrigins []string
	// 本地存储时对外提供上传文件，UploadDir 为空表示不提供
	UploadDir       string
	UploadURLPrefix string
	// 健康检查项，任一失败时 /health 返回 503
	HealthChecks map[string]func(ctx context.Context) error
}

// NewRouter 创建Gin路由并注册全部接口
func NewRouter(h Handlers, jwtSvc *jwt.JWTService, opts RouterOptions) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()

	// 使用中间件
	router.Use(logger.ErrorLoggerMiddleware()) // panic 恢复
	router.Use(logger.RequestLogger())         // 请求日志
	router.Use(metrics.Middleware())           // 请求指标
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	setupBasicRoutes(router, opts.HealthChecks)

	if opts.UploadDir != "" && opts.UploadURLPrefix != "" {
		router.Static(opts.UploadURLPrefix, opts.UploadDir)
	}

	auth := jwtSvc.AuthMiddleware()

	v1 := router.Group("/api/v1")
	{
		// 公开接口（无需认证）
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.User.Register)
			authGroup.POST("/login", h.User.Login)
		}

		users := v1.Group("/users", auth)
		{
			users.GET("/me", h.User.Me)
			users.PUT("/me", h.User.UpdateMe)
			users.GET("/profile/:userId", h.User.Profile)
			users.GET("/search", h.User.Search)
			users.GET("/online", h.User.Online)
		}

		requests := v1.Group("/friend-requests", auth)
		{
			requests.POST("", h.Friend.SendRequest)
			requests.PUT("/:id/accept", h.Friend.AcceptRequest)
			requests.GET("/pending", h.Friend.PendingIncoming)
			requests.GET("/outgoing", h.Friend.PendingOutgoing)
		}

		friends := v1.Group("/friends", auth)
		{
			friends.GET("", h.Friend.ListFriends)
			friends.GET("/status/:otherUserId", h.Friend.Status)
			friends.DELETE("/:otherUserId", h.Friend.RemoveFriend)
		}

		messages := v1.Group("/messages", auth)
		{
			messages.POST("", h.Message.SendMessage)                              // 发送私信
			messages.GET("", h.Message.ListConversations)                         // 会话列表
			messages.GET("/conversation/:otherUserId", h.Message.GetConversation) // 聊天记录
			messages.GET("/unread/count", h.Message.UnreadCount)                  // 未读数
			messages.DELETE("/:id", h.Message.DeleteMessage)                      // 删除自己发送的消息
		}

		activities := v1.Group("/activities", auth)
		{
			activities.POST("", h.Activity.Create)
			activities.GET("", h.Activity.List)
			activities.GET("/:id", h.Activity.Get)
			activities.PUT("/:id", h.Activity.Update)
			activities.DELETE("/:id", h.Activity.Delete)
		}

		goals := v1.Group("/goals", auth)
		{
			goals.POST("", h.Goal.Create)
			goals.GET("", h.Goal.List)
			goals.PUT("/:id/progress", h.Goal.UpdateProgress)
			goals.PUT("/:id/status", h.Goal.UpdateStatus)
			goals.DELETE("/:id", h.Goal.Delete)
		}

		notes := v1.Group("/notes", auth)
		{
			notes.POST("", h.Note.Create)
			notes.GET("", h.Note.ListOwn)
			notes.GET("/shared", h.Note.ListShared)
			notes.POST("/:id/share", h.Note.Share)
			notes.PUT("/:id", h.Note.Update)
			notes.DELETE("/:id", h.Note.Delete)
		}

		memories := v1.Group("/memories", auth)
		{
			memories.POST("", h.Memory.Upload)
			memories.GET("", h.Memory.ListOwn)
			memories.GET("/friend/:friendId", h.Memory.ListFriend)
			memories.DELETE("/:id", h.Memory.Delete)
		}

		analytics := v1.Group("/analytics", auth)
		{
			analytics.GET("/weekly", h.Analytics.Weekly)
			analytics.GET("/monthly", h.Analytics.Monthly)
			analytics.GET("/subject", h.Analytics.Subjects)
			analytics.GET("/group/comparison", h.Analytics.GroupComparison)
		}
	}

	// WebSocket路由，token 通过查询参数传递
	if h.WebSocket != nil {
		router.GET("/ws", h.WebSocket.ServeWS)
	}

	return router
}

// corsConfig 来源列表包含 "*" 时允许全部来源
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine, checks map[string]func(ctx context.Context) error) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		healthy := true
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				healthy = false
				results[name] = "down"
				continue
			}
			results[name] = "ok"
		}

		data := gin.H{
			"status": "ok",
			"checks": results,
			"time":   time.Now().Format(time.RFC3339),
		}
		if !healthy {
			data["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, response.Response{Code: response.CodeInternal, Message: "服务不可用", Data: data})
			return
		}
		response.Success(c, data)
	})

	// Prometheus 指标
	router.GET("/metrics", metrics.Handler())

	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "StudyHub 学习社区服务",
			"version": "1.0.0",
		})
	})
}
