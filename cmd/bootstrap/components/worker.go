package components

import (
	"context"

	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/usecase/shared"
	"coach-booking/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(newOutboxRelay),
	fx.Invoke(startOutboxRelay),
)

func newOutboxRelay(uow shared.UnitOfWork, pub worker.Publisher, clk clock.Clock, cfg config.Config) *worker.OutboxRelay {
	return worker.NewOutboxRelay(uow, pub, clk, cfg.AMQP)
}

func startOutboxRelay(lc fx.Lifecycle, relay *worker.OutboxRelay) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			relay.Start(ctx)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			defer cancel()
			return relay.Stop(stopCtx)
		},
	})
}
