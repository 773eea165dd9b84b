package domain

import (
	"time"

	"github.com/google/uuid"
)

// UsageQuota tracks how many posts a user has generated in the current
// calendar month (UTC).
type UsageQuota struct {
	UserID       uuid.UUID `json:"user_id"`
	Used         int       `json:"used"`
	MonthlyLimit int       `json:"monthly_limit"`
	PeriodStart  time.Time `json:"period_start"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MonthStart returns the first instant of t's calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NewUsageQuota starts an empty quota for the month containing now.
func NewUsageQuota(userID uuid.UUID, limit int, now time.Time) *UsageQuota {
	return &UsageQuota{
		UserID:       userID,
		MonthlyLimit: limit,
		PeriodStart:  MonthStart(now),
		UpdatedAt:    now.UTC(),
	}
}

// ApplyReset zeroes Used when now falls in a later month than PeriodStart and
// reports whether a reset happened.
func (q *UsageQuota) ApplyReset(now time.Time) bool {
	current := MonthStart(now)
	if !current.After(MonthStart(q.PeriodStart)) {
		return false
	}
	q.Used = 0
	q.PeriodStart = current
	q.UpdatedAt = now.UTC()
	return true
}

// Remaining returns the number of generations left this period.
func (q *UsageQuota) Remaining() int {
	if r := q.MonthlyLimit - q.Used; r > 0 {
		return r
	}
	return 0
}

// Exhausted reports whether no generations remain.
func (q *UsageQuota) Exhausted() bool {
	return q.Remaining() == 0
}
