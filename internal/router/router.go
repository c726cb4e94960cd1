package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rosterly/rosterly-backend/internal/config"
	"github.com/rosterly/rosterly-backend/internal/handler"
	"github.com/rosterly/rosterly-backend/internal/middleware"
	"github.com/rosterly/rosterly-backend/internal/response"
	"github.com/rosterly/rosterly-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Student   *handler.StudentHandler
	Analytics *handler.AnalyticsHandler
	Transfer  *handler.TransferHandler
	Backup    *handler.BackupHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/stats", middleware.CacheControl(30), handlers.Analytics.GetPublicStats)
	}

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
		auth.POST("/admin/logout", middleware.RequireAdminJWT(authService), handlers.Auth.AdminLogout)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/admin/dashboard/stream", handlers.WS.DashboardStream)
	}

	// ─── 3. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Record store
		adminAPI.GET("/students", handlers.Student.ListStudents)
		adminAPI.POST("/students", handlers.Student.CreateStudent)
		adminAPI.GET("/students/next-id", handlers.Student.GetNextStudentID)
		adminAPI.GET("/students/:id", handlers.Student.GetStudent)
		adminAPI.PUT("/students/:id", handlers.Student.UpdateStudent)
		adminAPI.DELETE("/students/:id", handlers.Student.DeleteStudent)
		adminAPI.POST("/students/:id/archive", handlers.Student.ArchiveStudent)
		adminAPI.POST("/students/:id/restore", handlers.Student.RestoreStudent)
		adminAPI.POST("/students/bulk-delete", handlers.Student.BulkDeleteStudents)

		// Dashboard
		adminAPI.GET("/dashboard", handlers.Analytics.GetDashboard)
		adminAPI.GET("/dashboard/performance", handlers.Analytics.GetPerformanceAnalysis)

		// Import / Export
		adminAPI.GET("/export/:format", handlers.Transfer.ExportStudents)
		adminAPI.POST("/import", handlers.Transfer.ImportStudents)

		// Backups
		adminAPI.GET("/backups", handlers.Backup.ListBackups)
		adminAPI.POST("/backups", handlers.Backup.CreateBackup)
	}

	return router
}
