package app

import (
	"context"
	"log"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/controller"
	"med_edu_backend/internal/repository"
	"med_edu_backend/internal/service"
	"med_edu_backend/pkg/database"
	"med_edu_backend/pkg/logger"
	"med_edu_backend/pkg/monitoring"
	"med_edu_backend/pkg/security"
	"med_edu_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 学习计划历史的保留期，超期记录由后台任务清理
const planLogRetention = 90 * 24 * time.Hour

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	repos           *repositories
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	topic        *repository.TopicRepository
	chunk        *repository.ChunkRepository
	question     *repository.QuestionRepository
	answer       *repository.AnswerRepository
	mastery      *repository.MasteryRepository
	planLog      *repository.StudyPlanLogRepository
	ingestionJob *repository.IngestionJobRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	storage     *service.StorageService
	llm         *service.LLMService
	embedding   *service.EmbeddingService
	content     *service.ContentService
	quiz        *service.QuizService
	mastery     *service.MasteryService
	planner     *service.StudyPlanner
	recommender *service.RecommenderService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	content     *controller.ContentController
	quiz        *controller.QuizController
	mastery     *controller.MasteryController
	recommender *controller.RecommenderController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		topic:        repository.NewTopicRepository(db),
		chunk:        repository.NewChunkRepository(db),
		question:     repository.NewQuestionRepository(db),
		answer:       repository.NewAnswerRepository(db),
		mastery:      repository.NewMasteryRepository(db),
		planLog:      repository.NewStudyPlanLogRepository(db),
		ingestionJob: repository.NewIngestionJobRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.llm = service.NewLLMService(cfg.AI)
	s.embedding = service.NewEmbeddingService(cfg.AI)

	s.auth = service.NewAuthService(repos.user, rdb, nil, cfg.JWT, cfg.OTP)
	s.user = service.NewUserService(repos.user, repos.answer, repos.planLog)
	s.content = service.NewContentService(repos.topic, repos.chunk, repos.ingestionJob, s.llm, s.embedding, s.storage, rdb, cfg)
	s.mastery = service.NewMasteryService(repos.mastery, repos.topic, repos.answer, repos.user, cfg.Mastery, db)
	s.quiz = service.NewQuizService(repos.question, repos.answer, repos.chunk, repos.topic, s.mastery, s.llm)
	s.planner = service.NewStudyPlanner(s.mastery, repos.topic, cfg.Planner)
	s.recommender = service.NewRecommenderService(s.planner, s.content, s.quiz, repos.user, repos.planLog)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user),
		content:     controller.NewContentController(s.content, s.storage, a.Config),
		quiz:        controller.NewQuizController(s.quiz),
		mastery:     controller.NewMasteryController(s.mastery),
		recommender: controller.NewRecommenderController(s.recommender),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(repos *repositories) {
	// 定期清理过期的学习计划历史
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			deleted, err := repos.planLog.DeleteOlderThan(planLogRetention)
			if err != nil {
				logger.Log.Error("Failed to prune old study plan logs", zap.Error(err))
				continue
			}
			if deleted > 0 {
				logger.Log.Info("Pruned old study plan logs", zap.Int64("deleted", deleted))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.repos = repos
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("med-edu-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(repos)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

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

	log.Println("Server exiting")
}
