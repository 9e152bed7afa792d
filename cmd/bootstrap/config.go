package bootstrap

import (
	"log/slog"

	"coach-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(logConfigSummary),
)

// Secrets stay out of the log; only the adapter choices are reported.
func logConfigSummary(cfg config.Config) {
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"dbHost", cfg.DB.Host,
		"paymentGateway", cfg.PayPal.Gateway,
		"currency", cfg.PayPal.Currency,
		"redisLocker", cfg.Redis.Addr != "",
		"amqpPublisher", cfg.AMQP.URL != "",
	)
}
