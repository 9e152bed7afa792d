package components

import (
	"coach-booking/internal/handler"
	"coach-booking/internal/handler/api"
	"coach-booking/internal/handler/middleware"
	"coach-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSessionHandler,
		api.NewPaymentHandler,
		api.NewDiscountHandler,
		api.NewScheduleHandler,
		api.NewCalendarHandler,
		middleware.NewAuthMiddleware,
		func(cfg config.Config) *middleware.RateLimiter {
			return middleware.NewRateLimiter(cfg.RateLimit)
		},
		newHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func newHandlers(
	s *api.SessionHandler,
	p *api.PaymentHandler,
	d *api.DiscountHandler,
	sc *api.ScheduleHandler,
	c *api.CalendarHandler,
) handler.Handlers {
	return handler.Handlers{Session: s, Payment: p, Discount: d, Schedule: sc, Calendar: c}
}
