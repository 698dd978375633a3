package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ruben1877/360spyne/config"
	"github.com/Ruben1877/360spyne/handler"
	"github.com/Ruben1877/360spyne/middleware"
	"github.com/Ruben1877/360spyne/service"
	"github.com/Ruben1877/360spyne/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载配置
	cfg := config.New()

	// 初始化日志
	if err := utils.InitLogger(cfg.Server.Mode); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting studio render server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	// 确保上传和输出目录存在
	for _, dir := range []string{cfg.Upload.UploadDir, cfg.Render.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			utils.Logger.Fatal("failed to create directory",
				zap.String("dir", dir), zap.Error(err))
		}
	}

	// 初始化Redis
	redisService := service.NewRedisService(&cfg.Redis)
	if err := redisService.Ping(context.Background()); err != nil {
		utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
	} else {
		utils.Logger.Info("redis connected successfully")
	}
	defer redisService.Close()

	// 初始化渲染服务
	renderService := service.NewRenderService(&cfg.Render)

	// 初始化Handler
	renderHandler := handler.NewRenderHandler(cfg, redisService, renderService)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 创建路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// 渲染结果静态服务
	r.Static("/outputs", cfg.Render.OutputDir)

	// 健康检查和版本信息
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API路由
	api := r.Group("/api/v1")
	{
		api.POST("/render", renderHandler.Render)
		api.GET("/render/:key", renderHandler.GetByKey)
		api.GET("/presets", renderHandler.Presets)
	}

	// 启动服务器
	utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(cfg.Server.Port); err != nil {
		utils.Logger.Fatal("failed to start server", zap.Error(err))
	}
}
