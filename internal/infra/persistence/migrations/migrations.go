// Package migrations holds the versioned schema of the local database.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var schemaFS embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// Up applies every pending migration. Each version runs exactly once inside
// its own transaction; goose records applied versions in goose_db_version.
func Up(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := configure(logger); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "apply migrations")
	}

	return nil
}

// Version returns the schema version currently recorded in db.
func Version(ctx context.Context, db *sql.DB, logger *slog.Logger) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := configure(logger); err != nil {
		return 0, err
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, errors.Wrap(err, "read schema version")
	}

	return version, nil
}

func configure(logger *slog.Logger) error {
	goose.SetBaseFS(schemaFS)
	goose.SetLogger(&gooseSlogLogger{logger: logger})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	return nil
}

// gooseSlogLogger routes goose progress output into slog at debug level.
type gooseSlogLogger struct {
	logger *slog.Logger
}

func (l *gooseSlogLogger) Printf(format string, v ...any) {
	if l.logger == nil {
		return
	}

	l.logger.Debug("goose", slog.String("message", fmt.Sprintf(format, v...)))
}

func (l *gooseSlogLogger) Fatalf(format string, v ...any) {
	if l.logger == nil {
		return
	}

	l.logger.Error("goose", slog.String("message", fmt.Sprintf(format, v...)))
}
