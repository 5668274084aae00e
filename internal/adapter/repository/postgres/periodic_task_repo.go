package postgres

import (
	"context"
	"time"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

// periodicTaskRepository implements domain.PeriodicTaskRepository
type periodicTaskRepository struct {
	db *DB
}

// NewPeriodicTaskRepository creates a new periodic task repository
func NewPeriodicTaskRepository(db *DB) domain.PeriodicTaskRepository {
	return &periodicTaskRepository{db: db}
}

// CreateIfAbsent registers the task unless its name is taken
func (r *periodicTaskRepository) CreateIfAbsent(ctx context.Context, task *domain.PeriodicTask) (bool, error) {
	if err := task.Validate(); err != nil {
		return false, err
	}

	query := `
		INSERT INTO periodic_tasks (name, task, interval_seconds, enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		task.Name,
		task.Task,
		int64(task.Interval/time.Second),
		task.Enabled,
	)
	if err != nil {
		return false, wrapError(err, "failed to register periodic task %q", task.Name)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapError(err, "failed to read rows affected")
	}
	return n == 1, nil
}

// ListEnabled retrieves every enabled task
func (r *periodicTaskRepository) ListEnabled(ctx context.Context) ([]*domain.PeriodicTask, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, task, interval_seconds, enabled
		FROM periodic_tasks
		WHERE enabled
		ORDER BY name
	`)
	if err != nil {
		return nil, wrapError(err, "failed to list periodic tasks")
	}
	defer rows.Close()

	tasks := make([]*domain.PeriodicTask, 0)
	for rows.Next() {
		var t domain.PeriodicTask
		var seconds int64
		if err := rows.Scan(&t.Name, &t.Task, &seconds, &t.Enabled); err != nil {
			return nil, wrapError(err, "failed to scan periodic task")
		}
		t.Interval = time.Duration(seconds) * time.Second
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError(err, "error iterating periodic tasks")
	}

	return tasks, nil
}
