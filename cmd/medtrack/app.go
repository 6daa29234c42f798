package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"medtrack/config"
	"medtrack/internal/domain/lifecycle"
	"medtrack/internal/domain/service"
	"medtrack/internal/infra/artifact"
	logs "medtrack/internal/infra/log"
	"medtrack/internal/infra/persistence/sqlite"
	"medtrack/internal/infra/qrcode"
	"medtrack/internal/share"
	"medtrack/internal/state"
	"medtrack/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type appDeps struct {
	fx.In

	DB     *gorm.DB
	Store  *state.Store
	Share  *share.Service
	Logger *slog.Logger
}

func newApp(out io.Writer, populate func(appDeps)) *fx.App {
	return fx.New(
		fx.NopLogger,
		fx.StartTimeout(lifecycle.DefaultTimeout),
		fx.StopTimeout(lifecycle.DefaultTimeout),
		injectInfra(out),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectState(),
		fx.Invoke(populate),
	)
}

func injectInfra(out io.Writer) fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func() io.Writer { return out },
				fx.ResultTags(`name:"shareOutput"`),
			),
			config.New,
			logs.New,
			sqlite.New,
			fx.Annotate(
				artifact.New,
				fx.As(new(service.ArtifactStore)),
			),
		),
	)
}

func injectRepo() fx.Option {
	return fx.Provide(
		sqlite.NewUserRepository,
		sqlite.NewMedicineRepository,
		sqlite.NewOrderRepository,
		sqlite.NewTransactionManager,
	)
}

func injectService() fx.Option {
	return fx.Provide(
		service.NewSystemClock,
		qrcode.NewFromConfig,
		fx.Annotate(
			newConsoleSharer,
			fx.ParamTags(`name:"shareOutput"`),
		),
	)
}

func newConsoleSharer(out io.Writer) service.Sharer {
	return share.NewConsoleSharer(out)
}

func injectUsecase() fx.Option {
	return fx.Provide(
		impl.NewUserService,
		impl.NewMedicineService,
		impl.NewOrderService,
		impl.NewStatisticsService,
		impl.NewBackupService,
	)
}

func injectState() fx.Option {
	return fx.Provide(
		state.New,
		func(store *state.Store) share.OrderExporter { return store },
		func(store *state.Store) share.DataExporter { return store },
		share.NewService,
	)
}

// withApp boots the graph, runs fn and always stops the app afterwards.
func withApp(ctx context.Context, fn func(ctx context.Context, deps appDeps) error) (err error) {
	var deps appDeps
	app := newApp(os.Stdout, func(d appDeps) { deps = d })
	if err := app.Err(); err != nil {
		return errors.Wrap(err, "failed to build application")
	}

	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start application")
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
		defer cancel()

		if stopErr := app.Stop(stopCtx); stopErr != nil && err == nil {
			err = errors.Wrap(stopErr, "failed to stop application")
		}
	}()

	return fn(ctx, deps)
}
