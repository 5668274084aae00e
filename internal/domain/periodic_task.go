package domain

import (
	"errors"
	"strings"
	"time"
)

// PeriodicTask is a named recurring job registered with the scheduler
type PeriodicTask struct {
	Name     string // Unique
	Task     string // Job identifier resolved by the scheduler
	Interval time.Duration
	Enabled  bool
}

// Validate ensures the periodic task adheres to domain rules
func (t *PeriodicTask) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("periodic task name cannot be empty")
	}
	if strings.TrimSpace(t.Task) == "" {
		return errors.New("periodic task must reference a job")
	}
	if t.Interval <= 0 {
		return errors.New("periodic task interval must be positive")
	}
	return nil
}
