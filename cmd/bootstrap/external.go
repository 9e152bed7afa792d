package bootstrap

import (
	"context"
	"log/slog"

	"coach-booking/internal/infra/calendar"
	"coach-booking/internal/infra/lock"
	"coach-booking/internal/infra/messaging"
	"coach-booking/internal/infra/paypal"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/usecase/shared"
	"coach-booking/internal/worker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const gatewayFake = "fake"

// ExternalModule provides the adapters to systems outside the database.
var ExternalModule = fx.Module("external",
	fx.Provide(
		NewPaymentGateway,
		NewLocker,
		NewPublisher,
		fx.Annotate(
			calendar.NewMockProvider,
			fx.As(new(shared.CalendarProvider)),
		),
	),
)

func NewPaymentGateway(cfg config.Config) shared.PaymentGateway {
	if cfg.PayPal.Gateway == gatewayFake {
		slog.Warn("using fake payment gateway")
		return paypal.NewFakeGateway()
	}
	return paypal.NewClient(cfg.PayPal)
}

func NewLocker(lc fx.Lifecycle, cfg config.Config) shared.Locker {
	if cfg.Redis.Addr == "" {
		slog.Warn("REDIS_ADDR not set; capture locks are process-local")
		return lock.NewLocalLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return lock.NewRedisLocker(client)
}

func NewPublisher(lc fx.Lifecycle, cfg config.Config) (worker.Publisher, error) {
	if cfg.AMQP.URL == "" {
		slog.Warn("AMQP_URL not set; events are written to the log")
		return messaging.NewLogPublisher(), nil
	}

	pub, err := messaging.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	return pub, nil
}
