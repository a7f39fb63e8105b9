// Package router assembles the HTTP surface: middleware chain, handlers and
// the /api/v1 route table.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/timetracker-api/internal/config"
	"github.com/yukikurage/timetracker-api/internal/constants"
	"github.com/yukikurage/timetracker-api/internal/handlers"
	"github.com/yukikurage/timetracker-api/internal/middleware"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"github.com/yukikurage/timetracker-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries the collaborators the router wires together
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Sessions sessions.Store
	Notifier services.Notifier
	Logger   *zap.Logger
}

// New builds the gin engine with every route registered
func New(deps Deps) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger

	userRepo := repository.NewUserRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)
	entryRepo := repository.NewTimeEntryRepository(deps.DB)
	quotaRepo := repository.NewMonthlyQuotaRepository(deps.DB)

	authService := services.NewAuthServiceFromConfig(cfg, userRepo, deps.Notifier, log)
	userService := services.NewUserService(userRepo, deps.Notifier, cfg.EmailsEnabled(), log)
	projectService := services.NewProjectService(projectRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo)
	entryService := services.NewTimeEntryService(entryRepo, taskRepo, projectRepo)
	quotaService := services.NewMonthlyQuotaService(quotaRepo)
	reportService := services.NewReportService(entryService)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	entryHandler := handlers.NewTimeEntryHandler(entryService)
	quotaHandler := handlers.NewMonthlyQuotaHandler(quotaService)
	reportHandler := handlers.NewReportHandler(reportService, log)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", constants.RequestIDHeader},
		ExposeHeaders:    []string{constants.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.Sessions))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(authService)
	limiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMinute)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", middleware.RateLimit(limiter), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", middleware.RateLimit(limiter), authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", requireAuth, userHandler.GetMe)
		}

		api.POST("/users/init", userHandler.InitSuperuser)

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/me", userHandler.GetMe)
			users.PUT("/me", userHandler.UpdateMe)
			users.GET("/managers", userHandler.ListManagers)
			users.GET("/employees", userHandler.ListEmployees)
			users.PUT("/role/:id", userHandler.UpdateUserRole)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.PUT("/:id/status", projectHandler.UpdateProjectStatus)
			projects.GET("/:id/team", projectHandler.ListTeam)
			projects.POST("/:id/team", projectHandler.AddTeamMember)
			projects.PUT("/:id/team/:user_id", projectHandler.UpdateTeamMember)
			projects.DELETE("/:id/team/:user_id", projectHandler.RemoveTeamMember)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PUT("/:id/assign", taskHandler.AssignTask)
			tasks.PUT("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.PUT("/:id/priority", taskHandler.UpdateTaskPriority)
		}

		entries := api.Group("/time-entries")
		entries.Use(requireAuth)
		{
			entries.GET("", entryHandler.ListTimeEntries)
			entries.POST("", entryHandler.CreateTimeEntry)
			entries.GET("/:id", entryHandler.GetTimeEntry)
			entries.PUT("/:id", entryHandler.UpdateTimeEntry)
			entries.DELETE("/:id", entryHandler.DeleteTimeEntry)
			entries.PUT("/:id/submit", entryHandler.SubmitTimeEntry)
			entries.PUT("/:id/approve", entryHandler.ApproveTimeEntry)
			entries.PUT("/:id/reject", entryHandler.RejectTimeEntry)
			entries.PUT("/:id/mark-billed", entryHandler.MarkTimeEntryBilled)
			entries.PUT("/:id/reopen", entryHandler.ReopenTimeEntry)
		}

		reports := api.Group("/reports")
		reports.Use(requireAuth)
		{
			reports.GET("/time-entries", reportHandler.GenerateReport)
			reports.POST("/generate", reportHandler.GenerateReportFromBody)
		}

		quotas := api.Group("/monthly-quotas")
		quotas.Use(requireAuth)
		{
			quotas.GET("", quotaHandler.ListQuotas)
			quotas.POST("", quotaHandler.CreateQuota)
			quotas.GET("/:month", quotaHandler.GetQuota)
			quotas.PUT("/:month", quotaHandler.UpdateQuota)
			quotas.DELETE("/:month", quotaHandler.DeleteQuota)
		}
	}

	return r
}
