package impl

import (
	"context"
	"log/slog"

	"medtrack/internal/domain/entity"
	"medtrack/internal/domain/repository"
	"medtrack/internal/usecase"

	"github.com/pkg/errors"
)

type statisticsService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewStatisticsService creates a new statistics service instance
func NewStatisticsService(txManager repository.TransactionManager, logger *slog.Logger) usecase.StatisticsUsecase {
	return &statisticsService{
		txManager: txManager,
		logger:    logger,
	}
}

// GetStatistics counts users, medicines and medicine owners from one snapshot.
// The average is 0 when there are no users.
func (s *statisticsService) GetStatistics(ctx context.Context) (*entity.Statistics, error) {
	stats := &entity.Statistics{}

	err := s.txManager.ExecuteReadOnly(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		if stats.TotalUsers, err = repoFactory.UserRepo().Count(ctx); err != nil {
			return err
		}
		if stats.TotalMedicines, err = repoFactory.MedicineRepo().Count(ctx); err != nil {
			return err
		}
		stats.UsersWithMedicines, err = repoFactory.MedicineRepo().CountOwners(ctx)

		return err
	})
	if err != nil {
		s.logger.Error("Failed to compute statistics", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to compute statistics")
	}

	if stats.TotalUsers > 0 {
		stats.AverageMedicinesPerUser = float64(stats.TotalMedicines) / float64(stats.TotalUsers)
	}

	return stats, nil
}
