package app

import (
	"quiz_app_backend/docs"
	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/middleware"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/quizzes", c.quiz.ListQuizzes)
		public.GET("/quizzes/:id/questions", c.quiz.GetQuizQuestions)
		public.GET("/questions", c.question.ListQuestions)
		public.GET("/questions/:subject", c.question.ListBySubject)
		public.GET("/subjects", c.subject.ListSubjects)
		public.GET("/subjects/:id", c.subject.GetSubject)
	}
}

func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)
	group.POST("/update-avatar", c.user.UpdateAvatar)

	group.POST("/attempts", c.attempt.SubmitAttempt)
	// 旧版客户端使用单数路径
	group.POST("/attempt", c.attempt.SubmitAttempt)
	group.GET("/attempts/:email", c.attempt.ListAttempts)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/quizzes/add", c.quiz.CreateQuiz)
		admin.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)

		admin.POST("/questions/add", c.question.CreateQuestion)
		admin.DELETE("/questions/:id", c.question.DeleteQuestion)

		admin.POST("/subjects", c.subject.CreateSubject)
		admin.PUT("/subjects/:id", c.subject.UpdateSubject)
		admin.DELETE("/subjects/:id", c.subject.DeleteSubject)

		admin.POST("/admin/reseed", c.admin.Reseed)
		admin.GET("/admin/attempts/export", c.admin.ExportAttempts)
	}
}
