package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/scuola-app/scuola-api/api/swagger"
	"github.com/scuola-app/scuola-api/internal/middleware"
	"github.com/scuola-app/scuola-api/internal/models"
	"github.com/scuola-app/scuola-api/internal/service"
	"github.com/scuola-app/scuola-api/pkg/config"
	"github.com/scuola-app/scuola-api/pkg/logger"
	corsMiddleware "github.com/scuola-app/scuola-api/pkg/middleware/cors"
	"github.com/scuola-app/scuola-api/pkg/middleware/requestid"
)

type roleReader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RouterDeps collects everything the HTTP surface needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *service.AuthService
	Users   roleReader
	Metrics *service.MetricsService

	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	CourseHandler  *CourseHandler
	CartHandler    *CartHandler
	PaymentHandler *PaymentHandler
	HealthHandler  *HealthHandler
}

// NewRouter wires middlewares and the route table.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(deps.Logger))
	router.Use(corsMiddleware.New(deps.Config.CORS.AllowedOrigins))
	router.Use(metricsMiddleware(deps.Metrics))

	authenticate := middleware.Authenticate(deps.Auth)
	adminOnly := middleware.RequireAdmin(deps.Users)
	selfEmail := middleware.RequireSelfEmail("email")

	router.GET("/", deps.HealthHandler.Banner)
	router.GET("/health", deps.HealthHandler.Health)
	router.GET("/ready", deps.HealthHandler.Ready)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.POST("/jwt", deps.AuthHandler.IssueToken)

	router.GET("/courses", deps.CourseHandler.PublicCatalog)
	router.GET("/popularCourses", deps.CourseHandler.PopularCourses)
	router.GET("/allCourses/admin", authenticate, adminOnly, deps.CourseHandler.AllCourses)

	instructorCourses := router.Group("/courses/instructors")
	{
		instructorCourses.POST("", authenticate, deps.CourseHandler.Submit)
		instructorCourses.GET("", authenticate, selfEmail, deps.CourseHandler.InstructorCourses)
		instructorCourses.GET("/:id", deps.CourseHandler.Get)
		instructorCourses.PATCH("/:id", authenticate, deps.CourseHandler.Update)
		instructorCourses.DELETE("/:id", deps.CourseHandler.Delete)
	}

	moderation := router.Group("/courses/admin", authenticate, adminOnly)
	{
		moderation.PATCH("/approve/:id", deps.CourseHandler.Approve)
		moderation.PATCH("/deny/:id", deps.CourseHandler.Deny)
		moderation.PUT("/feedback/:id", deps.CourseHandler.Feedback)
	}

	router.GET("/instructors", deps.UserHandler.Instructors)
	router.GET("/popularInstructors", deps.UserHandler.PopularInstructors)
	router.GET("/instructors/:id", deps.CourseHandler.InstructorProfile)

	router.POST("/users", deps.UserHandler.Register)
	userAdmin := router.Group("/users/admin")
	{
		userAdmin.GET("", authenticate, adminOnly, deps.UserHandler.List)
		userAdmin.GET("/:email", authenticate, deps.UserHandler.CheckAdmin)
		userAdmin.PATCH("/:id", authenticate, adminOnly, deps.UserHandler.PromoteToAdmin)
		userAdmin.PATCH("/instructor/:id", authenticate, adminOnly, deps.UserHandler.PromoteToInstructor)
		userAdmin.DELETE("/delete/:id", authenticate, adminOnly, deps.UserHandler.Delete)
	}

	router.POST("/selectedClasses", deps.CartHandler.Add)
	router.GET("/selectedClasses", authenticate, selfEmail, deps.CartHandler.List)
	router.DELETE("/selectedClasses/:id", deps.CartHandler.Remove)

	router.POST("/create_payment_intent", authenticate, deps.PaymentHandler.CreateIntent)
	payments := router.Group("/payments", authenticate)
	{
		payments.POST("", deps.PaymentHandler.Settle)
		payments.GET("/classes", selfEmail, deps.PaymentHandler.History)
		payments.GET("/:id/receipt", deps.PaymentHandler.Receipt)
	}

	return router
}

func metricsMiddleware(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
