package migrations

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddNamedMigrationContext("00002_order_retention.go", upOrderRetention, downOrderRetention)
}

// upOrderRetention indexes orders by creation time for the retention sweep
// and clamps legacy export flags to the 0/1 domain.
func upOrderRetention(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at)`); err != nil {
		return errors.Wrap(err, "create idx_orders_created_at")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET exported = 1 WHERE exported NOT IN (0, 1)`); err != nil {
		return errors.Wrap(err, "normalize orders.exported")
	}

	return nil
}

func downOrderRetention(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DROP INDEX IF EXISTS idx_orders_created_at`); err != nil {
		return errors.Wrap(err, "drop idx_orders_created_at")
	}

	return nil
}
