package middleware

import (
	"log/slog"
	"slices"

	"coach-booking/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyHeader     = "Idempotency-Key"
	IdempotentReplayedHeader = "Idempotent-Replayed"
)

// NewCORSMiddleware builds the CORS handler from config. Browser clients must be
// able to send Idempotency-Key and read Idempotent-Replayed regardless of what the
// environment lists.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     withHeader(cfg.AllowHeaders, IdempotencyKeyHeader),
		ExposeHeaders:    withHeader(cfg.ExposeHeaders, IdempotentReplayedHeader),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized",
		"allowOrigins", corsCfg.AllowOrigins,
		"exposeHeaders", corsCfg.ExposeHeaders)
	return cors.New(corsCfg)
}

func withHeader(headers []string, h string) []string {
	if slices.Contains(headers, h) {
		return headers
	}
	return append(slices.Clone(headers), h)
}
