// Package scheduler registers and fires the periodic jobs of the service.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

// NAVSyncTask identifies the hourly NAV sync and portfolio revaluation job
const NAVSyncTask = "nav.update_nav_and_portfolio"

// Job is the body of a periodic task
type Job func(context.Context)

// Scheduler is the subset of Runner used to schedule tasks
type Scheduler interface {
	Add(name, spec string, job func(context.Context)) (cron.EntryID, error)
}

// Register records task in the registry unless a task with its name exists.
// A store that has not been migrated yet is logged and ignored.
func Register(ctx context.Context, repo domain.PeriodicTaskRepository, task *domain.PeriodicTask, logger *zap.Logger) error {
	created, err := repo.CreateIfAbsent(ctx, task)
	if err != nil {
		if errors.Is(err, domain.ErrCatalogNotReady) {
			logger.Warn("task registry not migrated, skipping registration", zap.String("task", task.Name))
			return nil
		}
		return fmt.Errorf("failed to register task %q: %w", task.Name, err)
	}

	if created {
		logger.Info("periodic task registered",
			zap.String("task", task.Name),
			zap.Duration("interval", task.Interval),
		)
	}
	return nil
}

// Schedule adds one cron entry per enabled registered task that has a job.
// When the registry cannot be read, fallback tasks are scheduled instead.
func Schedule(
	ctx context.Context,
	s Scheduler,
	repo domain.PeriodicTaskRepository,
	jobs map[string]Job,
	fallback []*domain.PeriodicTask,
	logger *zap.Logger,
) (int, error) {
	tasks, err := repo.ListEnabled(ctx)
	if err != nil {
		logger.Warn("failed to read task registry, using built-in schedule", zap.Error(err))
		tasks = fallback
	}

	scheduled := 0
	for _, task := range tasks {
		job, ok := jobs[task.Task]
		if !ok {
			logger.Warn("no job for registered task", zap.String("task", task.Name), zap.String("job", task.Task))
			continue
		}

		spec := "@every " + task.Interval.String()
		if _, err := s.Add(task.Name, spec, job); err != nil {
			return scheduled, fmt.Errorf("failed to schedule task %q: %w", task.Name, err)
		}
		logger.Info("task scheduled", zap.String("task", task.Name), zap.String("spec", spec))
		scheduled++
	}

	return scheduled, nil
}
