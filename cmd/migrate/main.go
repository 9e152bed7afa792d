package main

import (
	"flag"
	"log/slog"
	"os"

	"coach-booking/internal/infra/db"
	"coach-booking/internal/pkg/config"
)

// Usage: migrate [-dir migrations] [up | down -steps N]
func main() {
	dir := flag.String("dir", "migrations", "directory holding the *.up.sql / *.down.sql files")
	steps := flag.Int("steps", 1, "number of migrations to revert with down")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	switch cmd {
	case "", "up":
		err = db.Migrate(*dir, cfg.DB)
	case "down":
		err = db.Rollback(*dir, cfg.DB, *steps)
	default:
		slog.Error("unknown command", "command", cmd)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("migration failed", "command", cmd, "error", err.Error())
		os.Exit(1)
	}
	slog.Info("migration finished", "command", cmd)
}
