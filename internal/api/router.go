package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gulmohar/billing/internal/api/handlers"
	"gulmohar/billing/internal/api/middleware"
	"gulmohar/billing/internal/config"
	"gulmohar/billing/internal/logger"
)

// Handlers bundles the REST handlers mounted by SetupRouter.
type Handlers struct {
	Auth   *handlers.RestAuthHandler
	Bill   *handlers.RestBillHandler
	Report *handlers.RestReportHandler
}

// SetupRouter configures and returns the main Gin engine. rateLimiter may be
// nil to disable rate limiting.
func SetupRouter(cfg *config.Config, h Handlers, rateLimiter *middleware.RateLimiterMiddleware, log *logger.Logger) *gin.Engine {
	r := gin.New()

	// Apply global middleware first (order matters)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	if rateLimiter != nil {
		r.Use(rateLimiter.Limit())
	}

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	api := r.Group("/api")
	{
		// Public Routes
		api.POST("/auth/login", h.Auth.Login)

		// Authenticated Routes
		authRequired := api.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/auth/profile", h.Auth.Profile)

			authRequired.GET("/bills", h.Bill.ListBills)
			authRequired.POST("/bills", h.Bill.CreateBill)
			authRequired.GET("/bills/stats/dashboard", h.Report.Dashboard)
			authRequired.GET("/bills/stats/monthly", h.Report.MonthlySummary)
			authRequired.GET("/bills/stats/monthly/pdf", h.Report.MonthlySummaryPDF)
			authRequired.POST("/bills/stats/monthly/archive", h.Report.ArchiveMonthlySummary)
			authRequired.GET("/bills/:id", h.Bill.GetBill)
			authRequired.PATCH("/bills/:id/status", h.Bill.UpdateBillStatus)
			authRequired.GET("/bills/:id/pdf", h.Bill.GetBillPDF)
			authRequired.GET("/bills/:id/pdf/archive", h.Bill.GetBillArchiveURL)
		}

		// Admin Routes
		adminRequired := api.Group("/")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.POST("/auth/register", h.Auth.Register)
			adminRequired.DELETE("/bills/:id", h.Bill.DeleteBill)
		}
	}

	return r
}
