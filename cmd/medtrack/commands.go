package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"medtrack/internal/domain/entity"
	"medtrack/internal/infra/persistence/migrations"
	"medtrack/internal/share"
	"medtrack/internal/util"

	"github.com/pkg/errors"
)

func runMigrate(ctx context.Context, deps appDeps) error {
	sqlDB, err := deps.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}

	version, err := migrations.Version(ctx, sqlDB, deps.Logger)
	if err != nil {
		return err
	}

	fmt.Printf("schema version %d\n", version)

	return nil
}

func runStats(ctx context.Context, deps appDeps) error {
	stats, err := deps.Store.GetStatistics(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Users\t%d\n", stats.TotalUsers)
	fmt.Fprintf(w, "Medicines\t%d\n", stats.TotalMedicines)
	fmt.Fprintf(w, "Users with medicines\t%d\n", stats.UsersWithMedicines)
	fmt.Fprintf(w, "Medicines per user\t%.2f\n", stats.AverageMedicinesPerUser)

	return errors.Wrap(w.Flush(), "failed to write statistics")
}

func pruneCommand(days int) func(context.Context, appDeps) error {
	return func(ctx context.Context, deps appDeps) error {
		started := time.Now()

		deleted, err := deps.Store.DeleteOrdersOlderThan(ctx, days)
		if err != nil {
			return err
		}

		deps.Logger.Info("Retention sweep finished",
			slog.Int64("deleted", deleted),
			slog.String("elapsed", util.FormatDuration(time.Since(started))),
		)
		fmt.Printf("deleted %d orders\n", deleted)

		return nil
	}
}

func exportCommand(out string, viaShare bool) func(context.Context, appDeps) error {
	return func(ctx context.Context, deps appDeps) error {
		if viaShare {
			name := ""
			if out != "-" {
				name = out
			}
			_, err := deps.Share.ExportData(ctx, name)

			return err
		}

		export, err := deps.Store.ExportData(ctx)
		if err != nil {
			return err
		}

		payload, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode backup")
		}

		if out == "-" {
			_, err := os.Stdout.Write(append(payload, '\n'))

			return errors.Wrap(err, "failed to write backup")
		}

		if err := os.WriteFile(out, payload, 0o600); err != nil {
			return errors.Wrapf(err, "failed to write %s", out)
		}

		deps.Logger.Info("Backup written",
			slog.String("path", out),
			slog.String("size", util.FormatBytes(int64(len(payload)))),
			slog.String("sha256", util.Checksum(payload)),
		)

		return nil
	}
}

func importCommand(in string) func(context.Context, appDeps) error {
	return func(ctx context.Context, deps appDeps) error {
		payload, err := os.ReadFile(in)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", in)
		}

		var data entity.DataExport
		if err := json.Unmarshal(payload, &data); err != nil {
			return errors.Wrap(err, "failed to decode backup")
		}

		if err := deps.Store.ImportData(ctx, &data); err != nil {
			return err
		}

		fmt.Printf("imported %d users and %d medicines\n", len(data.Users), len(data.Medicines))

		return nil
	}
}

func usersCommand(search string) func(context.Context, appDeps) error {
	return func(ctx context.Context, deps appDeps) error {
		var users []*entity.User
		if search == "" {
			if err := deps.Store.LoadUsers(ctx); err != nil {
				return err
			}
			users = deps.Store.Snapshot().Users
		} else {
			var err error
			if users, err = deps.Store.SearchUsers(ctx, search); err != nil {
				return err
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPHONE\tCOMPANY\tADDRESS")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.FullName, u.PhoneNumber, u.Company, u.Address)
		}

		return errors.Wrap(w.Flush(), "failed to write users")
	}
}

func runPending(ctx context.Context, deps appDeps) error {
	pending, err := deps.Store.LoadUsersWithOrders(ctx, entity.ExportFilterPending)
	if err != nil {
		return err
	}

	for _, u := range pending {
		fmt.Printf("%s (%s) - %d orders, %d items\n",
			u.FullName, u.PhoneNumber, u.OrderStats.TotalOrders, u.OrderStats.TotalQuantity)
		fmt.Println(share.FormatOrderSummary(u))
		fmt.Println()
	}

	return nil
}

func shareCommand(userID uint, qr bool) func(context.Context, appDeps) error {
	return func(ctx context.Context, deps appDeps) error {
		pending, err := deps.Store.LoadUsersWithOrders(ctx, entity.ExportFilterPending)
		if err != nil {
			return err
		}

		for _, u := range pending {
			if u.ID != userID {
				continue
			}
			if qr {
				return deps.Share.ShareQRCode(ctx, u)
			}

			return deps.Share.ShareText(ctx, u)
		}

		return errors.Errorf("user %d has no pending orders", userID)
	}
}
