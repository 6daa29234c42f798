package usecase

import (
	"context"

	"medtrack/internal/domain/entity"
)

// StatisticsUsecase computes dashboard aggregates.
type StatisticsUsecase interface {
	GetStatistics(ctx context.Context) (*entity.Statistics, error)
}
