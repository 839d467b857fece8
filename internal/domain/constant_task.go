package domain

import (
	"errors"
	"strings"
	"time"
)

type Interval string

const (
	IntervalEveryCycle Interval = "every_cycle"
	IntervalHourly     Interval = "hourly"
	IntervalDaily      Interval = "daily"
	IntervalWeekly     Interval = "weekly"
)

func (i Interval) Period() time.Duration {
	switch i {
	case IntervalHourly:
		return time.Hour
	case IntervalDaily:
		return 24 * time.Hour
	case IntervalWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

type ConstantTask struct {
	Description  string   `json:"description"`
	Interval     Interval `json:"interval"`
	Priority     Priority `json:"priority"`
	AddedAt      string   `json:"added_at"`
	LastExecuted *string  `json:"last_executed"`
}

func (t ConstantTask) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return errors.New("constant task description is required")
	}

	return nil
}

// Due reports whether the task should run at now. Tasks that never ran, and
// every_cycle tasks, are always due.
func (t ConstantTask) Due(now time.Time) bool {
	period := t.Interval.Period()
	if period == 0 || t.LastExecuted == nil {
		return true
	}

	last, ok := ParseTimestamp(*t.LastExecuted)
	if !ok {
		return true
	}

	return now.Sub(last) >= period
}
