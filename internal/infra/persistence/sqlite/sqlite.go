// Package sqlite contains the concrete implementation of the persistence layer using GORM and an on-device SQLite file.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"medtrack/config"
	"medtrack/internal/domain/lifecycle"
	"medtrack/internal/errors"
	"medtrack/internal/infra/persistence/migrations"

	gormsqlite "github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the local database, registers lifecycle hooks that migrate on
// start and close on stop, and returns the shared handle.
func New(params Params) (*gorm.DB, error) {
	db, err := Open(params.Config.Storage, params.Logger, params.Config.Env.Debug)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQLite sql.DB")
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping SQLite")
			}

			if err := migrations.Up(ctx, sqlDB, params.Logger); err != nil {
				return err
			}

			params.Logger.Info("Local database ready", slog.String("path", params.Config.Storage.Path))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return sqlDB.Close()
		},
	})

	return db, nil
}

// Open connects to the SQLite file described by cfg. The pool is capped at a
// single connection: the store has one writer and transactions must not
// contend with stray connections.
func Open(cfg *config.StorageConfig, logger *slog.Logger, debug bool) (*gorm.DB, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errors.New("storage path is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrapf(err, "failed to create storage directory %s", dir)
		}
	}

	db, err := gorm.Open(gormsqlite.Open(buildDSN(cfg)), &gorm.Config{
		// Explicit transactions go through TransactionManager.
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 newGormSlogLogger(logger, debug),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQLite sql.DB")
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return db, nil
}

func buildDSN(cfg *config.StorageConfig) string {
	timeout := cfg.BusyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.Path, timeout.Milliseconds())
}
