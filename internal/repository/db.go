package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sistema-stock/ocr-service/internal/common"
)

// Open selects the backing store from the configuration: a postgres DSN gets
// a pgx pool, an empty DSN falls back to the embedded SQLite file.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (JobRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case strings.HasPrefix(cfg.DSN, "postgres://"), strings.HasPrefix(cfg.DSN, "postgresql://"):
		return openPostgres(ctx, cfg, logger)
	case cfg.DSN == "":
		return openSQLite(ctx, cfg.SQLitePath, logger)
	default:
		return nil, common.NewAppError("CONFIG_ERROR", "unsupported DB_URL scheme", common.ErrInvalidInput)
	}
}

// HealthCheck pings the store, bounded by timeout, to catch DSN issues early.
func HealthCheck(ctx context.Context, repo JobRepository, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging job store")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := repo.Ping(ctx); err != nil {
		logger.Error("job store ping failed", "error", err)
		return err
	}
	logger.Debug("job store ping successful")
	return nil
}
