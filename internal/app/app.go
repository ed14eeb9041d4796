package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu_tutor_backend/internal/config"
	"edu_tutor_backend/internal/controller"
	"edu_tutor_backend/internal/difficulty"
	"edu_tutor_backend/internal/mistake"
	"edu_tutor_backend/internal/provider"
	"edu_tutor_backend/internal/repository"
	"edu_tutor_backend/internal/scaffolding"
	"edu_tutor_backend/internal/service"
	"edu_tutor_backend/pkg/configwatcher"
	"edu_tutor_backend/pkg/database"
	"edu_tutor_backend/pkg/logger"
	"edu_tutor_backend/pkg/monitoring"
	"edu_tutor_backend/pkg/security"
	"edu_tutor_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config       *config.Config
	Router       *gin.Engine
	DB           *gorm.DB
	Redis        *redis.Client
	Orchestrator *provider.Orchestrator
	services     *services

	stopTasks chan struct{}
}

type repositories struct {
	user       *repository.UserRepository
	template   *repository.TemplateRepository
	session    *repository.SessionRepository
	preference *repository.PreferenceRepository
}

type services struct {
	auth     *service.AuthService
	template *service.TemplateService
	tutoring *service.TutorSessionService
}

type controllers struct {
	auth     *controller.AuthController
	template *controller.TemplateController
	tutoring *controller.TutoringController
	ai       *controller.AIController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		template:   repository.NewTemplateRepository(db),
		session:    repository.NewSessionRepository(db, rdb),
		preference: repository.NewPreferenceRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.template = service.NewTemplateService(repos.template)
	s.tutoring = service.NewTutorSessionService(
		repos.session,
		repos.template,
		repos.preference,
		repos.session,
		a.Orchestrator,
		scaffolding.NewSelector(time.Now().UnixNano()),
		mistake.NewClassifier(mistake.PriorityFromStrings(cfg.Tutoring.MistakePriority)),
		difficulty.NewAdapter(cfg.Tutoring.MinSampleSize),
		cfg,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		template: controller.NewTemplateController(s.template),
		tutoring: controller.NewTutoringController(s.tutoring),
		ai:       controller.NewAIController(a.Orchestrator),
		health:   controller.NewHealthController(db, a.Orchestrator),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 周期性回收长时间无活动的会话
func (a *App) startBackgroundTasks(s *services) {
	a.stopTasks = make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.tutoring.AbandonStale(context.Background())
			case <-a.stopTasks:
				return
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migration complete")
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	orchestrator, err := provider.NewFromConfig(cfg.AI)
	if err != nil {
		logger.Log.Fatal("Failed to initialize AI providers", zap.Error(err))
	}

	app := &App{
		Config:       cfg,
		DB:           db,
		Redis:        rdb,
		Orchestrator: orchestrator,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("tutor-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(services)

	// 配置文件热更新：难度策略等参数无需重启即可生效
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		services.tutoring.ApplyConfig(newCfg)
	})

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

	if a.stopTasks != nil {
		close(a.stopTasks)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
