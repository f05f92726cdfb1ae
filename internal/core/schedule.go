package core

import (
	"fmt"
	"time"

	"github.com/lutrii/payments/internal/model"
)

// NextDue advances a due date by one billing interval. It advances from the
// previous due date, not from the execution time, so a late execution does
// not drift the schedule.
func NextDue(prev time.Time, interval string) (time.Time, error) {
	switch interval {
	case model.IntervalDaily:
		return prev.AddDate(0, 0, 1), nil
	case model.IntervalWeekly:
		return prev.AddDate(0, 0, 7), nil
	case model.IntervalMonthly:
		return prev.AddDate(0, 1, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown billing interval %q", interval)
}

// IntervalDuration is the nominal length of one interval, used when
// scheduling the first charge and on resume.
func IntervalDuration(interval string) (time.Duration, error) {
	switch interval {
	case model.IntervalDaily:
		return 24 * time.Hour, nil
	case model.IntervalWeekly:
		return 7 * 24 * time.Hour, nil
	case model.IntervalMonthly:
		return 30 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unknown billing interval %q", interval)
}

// PaymentsPerYear estimates annual charge count for prepayment pricing.
func PaymentsPerYear(interval string) (int64, error) {
	switch interval {
	case model.IntervalDaily:
		return 365, nil
	case model.IntervalWeekly:
		return 52, nil
	case model.IntervalMonthly:
		return 12, nil
	}
	return 0, fmt.Errorf("unknown billing interval %q", interval)
}
