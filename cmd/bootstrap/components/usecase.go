package components

import (
	"coach-booking/internal/domain/session"
	"coach-booking/internal/pkg/clock"
	"coach-booking/internal/pkg/config"
	"coach-booking/internal/usecase"
	"coach-booking/internal/usecase/commands"
	"coach-booking/internal/usecase/queries"
	"coach-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		session.NewDefaultPriceCalculator,
		fx.As(new(session.PriceCalculator)),
	),
	session.NewFactory,
	func(cfg config.Config) config.BookingConfig {
		return cfg.Booking
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewSessionUseCase,
		commands.NewDiscountUseCase,
		commands.NewTimeSlotUseCase,
		commands.NewBookingTypeUseCase,
		commands.NewCalendarUseCase,
		newPaymentCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewSessionQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func newPaymentCommands(
	uow shared.UnitOfWork,
	q queries.SessionQueries,
	gateway shared.PaymentGateway,
	locker shared.Locker,
	clk clock.Clock,
	cfg config.Config,
) commands.PaymentCommands {
	return commands.NewPaymentUseCase(uow, q, gateway, locker, clk, cfg.Booking, cfg.PayPal.Currency)
}
