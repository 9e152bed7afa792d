package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const dbConnectTimeout = 10 * time.Second

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

// NewDB fails fast when the database is unreachable so the process never
// serves bookings without storage.
func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbConnectTimeout)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	slog.Info("database connected", "host", cfg.DB.Host, "db", cfg.DB.DBName, "maxConns", cfg.DB.MaxConns)

	lc.Append(fx.StopHook(pool.Close))
	return pool, nil
}
