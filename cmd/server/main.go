package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyhub/config"
	"studyhub/internal/handler"
	"studyhub/internal/repository"
	"studyhub/internal/service"
	dbPkg "studyhub/pkg/db"
	"studyhub/pkg/jwt"
	"studyhub/pkg/logger"
	"studyhub/pkg/metrics"
	redisPkg "studyhub/pkg/redis"
	"studyhub/pkg/storage"
	"studyhub/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== StudyHub 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(db); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 在线状态（可选），Redis 不可用时不影响其他功能
	var (
		presence     websocket.Presence
		onlineLister service.OnlineLister
	)
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := redisPkg.NewClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Warn("Redis不可用，在线状态功能关闭", zap.Error(err))
		} else {
			defer client.Close()
			p := redisPkg.NewPresence(client)
			presence = p
			onlineLister = p
			log.Info("Redis连接成功")
		}
	}

	// 3.3 图片存储
	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal("初始化存储失败", zap.Error(err))
	}

	// 4. 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	hub := websocket.NewHub()

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)

	userSvc := service.NewUserService(userRepo, friendRepo, jwtSvc, onlineLister)
	friendSvc := service.NewFriendService(friendRepo, userRepo)
	messageSvc := service.NewMessageService(repository.NewMessageRepository(db), userRepo, hub)
	activitySvc := service.NewActivityService(repository.NewActivityRepository(db))
	goalSvc := service.NewGoalService(repository.NewGoalRepository(db))
	noteSvc := service.NewNoteService(repository.NewNoteRepository(db), friendRepo, userRepo)
	memorySvc := service.NewMemoryService(repository.NewMemoryRepository(db), friendRepo, store, cfg.Storage.MaxImageSize)
	analyticsSvc := service.NewAnalyticsService(repository.NewAnalyticsRepository(db), friendRepo, userRepo)

	handlers := handler.Handlers{
		User:      handler.NewUserHandler(userSvc),
		Friend:    handler.NewFriendHandler(friendSvc),
		Message:   handler.NewMessageHandler(messageSvc),
		Activity:  handler.NewActivityHandler(activitySvc),
		Goal:      handler.NewGoalHandler(goalSvc),
		Note:      handler.NewNoteHandler(noteSvc),
		Memory:    handler.NewMemoryHandler(memorySvc),
		Analytics: handler.NewAnalyticsHandler(analyticsSvc),
		WebSocket: websocket.NewHandler(hub, jwtSvc, cfg.WebSocket, presence, cfg.Server.AllowedOrigins),
	}

	// 5. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 6. 创建Gin路由
	opts := handler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthChecks: map[string]func(ctx context.Context) error{
			"database": dbPkg.HealthCheck,
		},
	}
	if local, ok := store.(*storage.Local); ok {
		opts.UploadDir = local.Dir()
		opts.UploadURLPrefix = cfg.Storage.Local.URLPrefix
	}
	router := handler.NewRouter(handlers, jwtSvc, opts)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 8.1 定期采集连接池指标
	stopMetrics := make(chan struct{})
	go observeDB(stopMetrics)

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")
	close(stopMetrics)

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// observeDB 每15秒记录一次数据库连接池状态
func observeDB(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if db := dbPkg.GetDB(); db != nil {
				if sqlDB, err := db.DB(); err == nil {
					metrics.ObserveDB(sqlDB.Stats())
				}
			}
		case <-stop:
			return
		}
	}
}
