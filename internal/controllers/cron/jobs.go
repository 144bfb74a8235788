package cron

import (
	"context"

	use_cases "activities/internal/application/use-cases"

	"go.uber.org/zap"
)

// OutdatedJob - задача для удаления давно прошедших активностей
type OutdatedJob struct {
	usecase use_cases.UseCaser
	logger  *zap.SugaredLogger
}

func NewOutdatedJob(usecase use_cases.UseCaser, logger *zap.SugaredLogger) *OutdatedJob {
	return &OutdatedJob{
		usecase: usecase,
		logger:  logger,
	}
}

// Run выполняет задачу удаления устаревших активностей
func (j *OutdatedJob) Run(ctx context.Context) {
	j.logger.Info("Запуск задачи удаления устаревших активностей")

	defer func() {
		if r := recover(); r != nil {
			j.logger.Errorf("Паника при выполнении задачи удаления активностей: %v", r)
		}
	}()

	j.usecase.DeleteOldActivities(ctx)
	j.logger.Info("Задача удаления устаревших активностей завершена")
}
