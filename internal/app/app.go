package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"quiz_app_backend/internal/cache"
	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/controller"
	"quiz_app_backend/internal/events"
	"quiz_app_backend/internal/middleware"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/service"
	"quiz_app_backend/pkg/configwatcher"
	"quiz_app_backend/pkg/database"
	"quiz_app_backend/pkg/logger"
	"quiz_app_backend/pkg/monitoring"
	"quiz_app_backend/pkg/security"
	"quiz_app_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	ConfigFile string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client
	Bus        *events.Bus

	services        *services
	cors            *security.CORSPolicy
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	subject  *repository.SubjectRepository
	quiz     *repository.QuizRepository
	question *repository.QuestionRepository
	attempt  *repository.AttemptRepository
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	subject  *service.SubjectService
	quiz     *service.QuizService
	question *service.QuestionService
	attempt  *service.AttemptService
	seed     *service.SeedService
	export   *service.ExportService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	subject  *controller.SubjectController
	quiz     *controller.QuizController
	question *controller.QuestionController
	attempt  *controller.AttemptController
	admin    *controller.AdminController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		subject:  repository.NewSubjectRepository(db),
		quiz:     repository.NewQuizRepository(db),
		question: repository.NewQuestionRepository(db),
		attempt:  repository.NewAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client, publisher events.Publisher) *services {
	s := &services{}

	catalog := service.NewCatalogCache(cache.New(rdb, logger.Log), cfg.Redis.CacheTTL)

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, s.storage, publisher, cfg)
	s.subject = service.NewSubjectService(repos.subject, catalog)
	s.question = service.NewQuestionService(repos.question, catalog)
	s.quiz = service.NewQuizService(repos.quiz, s.question, catalog, publisher)
	s.attempt = service.NewAttemptService(repos.attempt, publisher)
	s.seed = service.NewSeedService(db, &cfg.Seed, catalog, publisher)
	s.export = service.NewExportService(repos.attempt)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.auth),
		subject:  controller.NewSubjectController(s.subject),
		quiz:     controller.NewQuizController(s.quiz),
		question: controller.NewQuestionController(s.question),
		attempt:  controller.NewAttemptController(s.attempt),
		admin:    controller.NewAdminController(s.seed, s.export),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.cors = security.NewCORSPolicy(cfg.CORS.AllowedOrigins)
	router.Use(a.cors.Handler())
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// Build 用已初始化的依赖装配路由，不做任何外部连接
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client, bus *events.Bus) *App {
	if bus == nil {
		bus = &events.Bus{Publisher: events.NopPublisher{}}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Bus:    bus,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb, bus.Publisher)
	controllers := app.initControllers(app.services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
		app.cors.SetOrigins(newCfg.CORS.AllowedOrigins)
	})

	return app
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	bus, err := events.NewBus(&cfg.Events, logger.Log)
	if err != nil {
		logger.Log.Fatal("Failed to initialize event bus", zap.Error(err))
	}

	app := Build(cfg, db, rdb, bus)
	app.ConfigFile = filepath.Join(configDir, "config.yaml")

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// Bootstrap 按配置导入种子数据并确保管理员账号存在
func (a *App) Bootstrap(ctx context.Context) error {
	if a.Config.Seed.OnStartup || a.Config.ForceReseed || a.Config.SeedOnly {
		if _, err := a.services.seed.Run(ctx); err != nil {
			return err
		}
	}

	seed := a.Config.Seed
	if seed.AdminEmail != "" && seed.AdminPassword != "" {
		created, err := a.services.auth.EnsureAdmin(seed.AdminEmail, seed.AdminPassword, "")
		if err != nil {
			return err
		}
		if created {
			logger.Log.Info("Admin account created", zap.String("email", seed.AdminEmail))
		}
	}
	return nil
}

// startBackgroundTasks 进程内事件消费，目前只记录日志
func (a *App) startBackgroundTasks(ctx context.Context) {
	go func() {
		err := a.Bus.Consume(ctx, func(e *events.Event) error {
			logger.Log.Info("domain event",
				zap.String("type", string(e.Type)),
				zap.String("id", e.ID),
				zap.Any("data", e.Data),
			)
			return nil
		})
		if err != nil {
			logger.Log.Error("event consumer stopped", zap.Error(err))
		}
	}()

	if a.ConfigFile != "" {
		go func() {
			err := configwatcher.Watch(ctx, a.ConfigFile, func(cfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(cfg)
				}
			})
			if err != nil {
				logger.Log.Warn("config watcher disabled", zap.Error(err))
			}
		}()
	}
}

func (a *App) Run() {
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.startBackgroundTasks(ctx)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := a.Bus.Close(); err != nil {
		logger.Log.Error("Failed to close event bus", zap.Error(err))
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
