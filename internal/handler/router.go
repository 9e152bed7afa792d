package handler

import (
	"log/slog"
	"net/http"

	"coach-booking/internal/domain/user"
	"coach-booking/internal/handler/api"
	"coach-booking/internal/handler/middleware"
	"coach-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Session  *api.SessionHandler
	Payment  *api.PaymentHandler
	Discount *api.DiscountHandler
	Schedule *api.ScheduleHandler
	Calendar *api.CalendarHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware, rateLimiter)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth(), rateLimiter.Middleware())
	{
		addRoutes(apiGroup.Group("/sessions"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Session.Create},
			{Method: http.MethodGet, Path: "", Handler: h.Session.List},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Session.Get},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Session.Cancel},
			{Method: http.MethodPatch, Path: "/:id/status", Handler: h.Session.UpdateStatus},
		})

		addRoutes(apiGroup.Group("/payments"), []route{
			{Method: http.MethodPost, Path: "/orders", Handler: h.Payment.CreateOrder},
			{Method: http.MethodPost, Path: "/orders/:orderId/capture", Handler: h.Payment.CaptureOrder},
			{
				Method:  http.MethodPatch,
				Path:    "/:id/status",
				Handler: h.Payment.UpdateStatus,
				Mw:      []gin.HandlerFunc{authMiddleware.RequireRole(user.RoleAdmin)},
			},
		})

		addRoutes(apiGroup.Group("/discounts"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Discount.Create},
			{Method: http.MethodGet, Path: "/validate", Handler: h.Discount.Validate},
			{Method: http.MethodPatch, Path: "/:code", Handler: h.Discount.Update},
			{Method: http.MethodDelete, Path: "/:code", Handler: h.Discount.Delete},
		})

		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/time-slots", Handler: h.Schedule.CreateTimeSlot},
			{Method: http.MethodDelete, Path: "/time-slots/:id", Handler: h.Schedule.DeleteTimeSlot},
			{Method: http.MethodGet, Path: "/coaches/:id/time-slots", Handler: h.Schedule.ListTimeSlots},
			{Method: http.MethodPost, Path: "/booking-types", Handler: h.Schedule.CreateBookingType},
			{Method: http.MethodDelete, Path: "/booking-types/:id", Handler: h.Schedule.DeactivateBookingType},
			{Method: http.MethodGet, Path: "/coaches/:id/booking-types", Handler: h.Schedule.ListBookingTypes},
		})

		addRoutes(apiGroup.Group("/calendar"), []route{
			{Method: http.MethodPost, Path: "/events", Handler: h.Calendar.CreateEvent},
			{Method: http.MethodDelete, Path: "/events/:eventId", Handler: h.Calendar.DeleteEvent},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
