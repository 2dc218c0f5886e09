package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ridha-415/filaops-sub000/internal/config"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"github.com/ridha-415/filaops-sub000/internal/handler"
	"github.com/ridha-415/filaops-sub000/internal/lock"
	"github.com/ridha-415/filaops-sub000/internal/middleware"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"github.com/ridha-415/filaops-sub000/internal/service"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting filaops service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// 自动迁移
	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis（未配置时互斥锁退化为进程内锁）
	rdb := initRedis(cfg.Redis)
	locker := lock.New(rdb)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, locker, cfg.Engine)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 注册路由
	registerRoutes(router, handlers)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 产品
		products := v1.Group("/products")
		{
			products.POST("", h.Product.Create)
			products.GET("", h.Product.List)
			products.GET("/:id", h.Product.Get)
			products.PUT("/:id", h.Product.Update)
		}

		// 库存
		inventory := v1.Group("/inventory")
		{
			inventory.POST("", h.Inventory.Set)
			inventory.GET("", h.Inventory.List)
			inventory.GET("/:product_id/available", h.Inventory.Available)
		}

		// BOM
		boms := v1.Group("/boms")
		{
			boms.POST("", h.BOM.Create)
			boms.GET("", h.BOM.List)
			boms.GET("/:id", h.BOM.Get)
			boms.POST("/:id/lines", h.BOM.AddLine)
			boms.PATCH("/:id/lines/:line_id", h.BOM.UpdateLine)
			boms.DELETE("/:id/lines/:line_id", h.BOM.DeleteLine)
			boms.GET("/:id/explode", h.BOM.Explode)
			boms.GET("/:id/cost-rollup", h.BOM.Rollup)
			boms.GET("/:id/feasibility", h.BOM.Feasibility)
		}
		v1.GET("/products/:id/bom-versions", h.BOM.Versions)
		v1.GET("/products/:id/active-bom", h.BOM.Active)

		// 工作中心
		workCenters := v1.Group("/work-centers")
		{
			workCenters.POST("", h.WorkCenter.Create)
			workCenters.GET("", h.WorkCenter.List)
			workCenters.GET("/:id", h.WorkCenter.Get)
			workCenters.PUT("/:id", h.WorkCenter.Update)
		}

		// 工艺路线
		routings := v1.Group("/routings")
		{
			routings.POST("", h.Routing.Create)
			routings.GET("", h.Routing.List)
			routings.GET("/:id", h.Routing.Get)
			routings.POST("/apply-template", h.Routing.ApplyTemplate)
			routings.POST("/:id/operations", h.Routing.AddOperation)
			routings.PUT("/:id/operations/:op_id", h.Routing.UpdateOperation)
			routings.DELETE("/:id/operations/:op_id", h.Routing.DeleteOperation)
		}
		v1.GET("/products/:id/active-routing", h.Routing.Active)

		// 生产订单
		orders := v1.Group("/production-orders")
		{
			orders.POST("", h.Production.Create)
			orders.GET("", h.Production.List)
			orders.GET("/:id", h.Production.Get)
			orders.POST("/:id/release", h.Production.Release)
			orders.POST("/:id/complete", h.Production.Complete)
			orders.POST("/:id/cancel", h.Production.Cancel)
		}
	}
}
