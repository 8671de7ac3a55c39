package app

import (
	"med_edu_backend/docs"
	"med_edu_backend/internal/config"
	"med_edu_backend/internal/middleware"
	"med_edu_backend/internal/model"
	"med_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		otp := public.Group("/otp")
		{
			otp.POST("/request", c.auth.RequestOTP)
			otp.POST("/verify", c.auth.VerifyOTP)
		}
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	// 用户
	rg.GET("/user/profile", c.user.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.GET("/user/stats", c.user.GetStats)

	// 主题与内容
	rg.GET("/topics", c.content.ListTopics)
	rg.GET("/topics/:id", c.content.GetTopic)
	rg.GET("/topics/:id/summary", c.content.GetTopicSummary)
	rg.GET("/content/search", c.content.SearchContent)
	rg.POST("/content/upload", c.content.UploadPDF)
	rg.GET("/content/ingestion/:jobId", c.content.GetIngestionStatus)

	// 练习
	rg.POST("/quiz/generate", c.quiz.GenerateQuiz)
	rg.POST("/quiz/answer", c.quiz.SubmitAnswer)

	// 掌握度
	rg.GET("/mastery/dashboard", c.mastery.GetDashboard)
	rg.GET("/mastery/topics/:id", c.mastery.GetTopicDetail)
	rg.GET("/mastery/weak", c.mastery.GetWeakTopics)

	// 学习计划
	rg.POST("/study-plan/generate", c.recommender.GeneratePlan)
	rg.GET("/study-plan/history", c.recommender.GetPlanHistory)
	rg.PUT("/study-plan/:id/completion", c.recommender.UpdatePlanCompletion)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/topics", c.content.CreateTopic)
		admin.POST("/questions", c.quiz.CreateQuestion)
		admin.GET("/questions", c.quiz.ListQuestions)
	}
}
