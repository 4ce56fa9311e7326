package app

import (
	"context"
	"exam_review_backend/internal/config"
	"exam_review_backend/internal/controller"
	"exam_review_backend/internal/repository"
	"exam_review_backend/internal/service"
	"exam_review_backend/pkg/filewatcher"
	"exam_review_backend/pkg/logger"
	"exam_review_backend/pkg/monitoring"
	"exam_review_backend/pkg/security"
	"exam_review_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type App struct {
	Config *config.Config
	Router *gin.Engine

	repos    *repositories
	services *services

	tracerShutdown func(context.Context) error
}

type repositories struct {
	progress *repository.ProgressRepository
	catalog  *repository.CatalogRepository
}

type services struct {
	session   *service.SessionService
	transfer  *service.TransferService
	analytics *service.AnalyticsService
	catalog   *service.CatalogService
}

type controllers struct {
	progress  *controller.ProgressController
	transfer  *controller.TransferController
	analytics *controller.AnalyticsController
	catalog   *controller.CatalogController
	health    *controller.HealthController
}

func (a *App) initRepositories(fs afero.Fs, cfg *config.Config) *repositories {
	return &repositories{
		progress: repository.NewProgressRepository(fs, cfg.Storage.DataFile),
		catalog:  repository.NewCatalogRepository(fs, cfg.Storage.CatalogDir),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	return &services{
		session:   service.NewSessionService(repos.progress),
		transfer:  service.NewTransferService(repos.progress, cfg.Export.FilePrefix),
		analytics: service.NewAnalyticsService(repos.progress, repos.catalog),
		catalog:   service.NewCatalogService(repos.catalog),
	}
}

func (a *App) initControllers(s *services, repos *repositories) *controllers {
	return &controllers{
		progress:  controller.NewProgressController(s.session),
		transfer:  controller.NewTransferController(s.transfer),
		analytics: controller.NewAnalyticsController(s.analytics),
		catalog:   controller.NewCatalogController(s.catalog),
		health:    controller.NewHealthController(repos.progress),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks() {
	// 进度文档被外部改写时让缓存失效，下一次读取回到介质
	go filewatcher.Watch(a.Config.Storage.DataFile, a.repos.progress.ResetCache)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{Config: cfg}

	repos := app.initRepositories(afero.NewOsFs(), cfg)
	app.repos = repos
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, repos)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("exam-review", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerShutdown = tp.Shutdown
	}

	app.registerRoutes(router, controllers)

	app.startBackgroundTasks()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
