package components

import (
	"coach-booking/internal/infra/db"
	"coach-booking/internal/infra/readstore"
	"coach-booking/internal/infra/uow"
	"coach-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		fx.Annotate(
			readstore.NewSessionReadStore,
			fx.As(new(queries.SessionReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
