package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clientbook-api/internal/config"
	domainRepo "github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/internal/presentation/http/handler"
	"github.com/sangkips/clientbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/clientbook-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Client       *handler.ClientHandler
	BookingEvent *handler.BookingEventHandler
	Transfer     *handler.TransferHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	BusinessRepo    domainRepo.BusinessRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.BusinessRateLimiter
}

// NewRateLimiter builds the per-business limiter from config.
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.BusinessRateLimiter {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rlCfg.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rlCfg.BurstSize = cfg.Requests
	}
	rlCfg.CleanupInterval = 5 * time.Minute
	rlCfg.EntryTTL = 10 * time.Minute
	return middleware.NewBusinessRateLimiter(rlCfg)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.RequireActiveBusiness(deps.BusinessRepo))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerClientRoutes(protected, h)
		registerTransferRoutes(protected, h)
		registerBookingEventRoutes(protected, h, deps)
	}

	return router
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	clients.Use(middleware.RequirePermission(utils.PermissionManageClients))
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/segments", h.Client.Segments)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
		clients.POST("/:id/tags", h.Client.AddTag)
		clients.DELETE("/:id/tags/:tag", h.Client.RemoveTag)
		clients.POST("/:id/notes", h.Client.AddNote)
		clients.DELETE("/:id/notes/:note_id", h.Client.RemoveNote)
	}
}

func registerTransferRoutes(protected *gin.RouterGroup, h *Handlers) {
	transfer := protected.Group("/clients")
	transfer.Use(middleware.RequirePermission(utils.PermissionTransfer))
	{
		transfer.POST("/import", h.Transfer.Import)
		transfer.GET("/export", h.Transfer.Export)
	}
}

func registerBookingEventRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	events := protected.Group("/booking-events")
	events.Use(middleware.RequirePermission(utils.PermissionIngestBookings))
	{
		events.POST("/created",
			middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}),
			h.BookingEvent.Created,
		)
		events.POST("/status-changed", h.BookingEvent.StatusChanged)
	}
}
