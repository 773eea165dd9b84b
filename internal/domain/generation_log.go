package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeSucceeded marks a successful generation call. Failed calls record
// their classification instead.
const OutcomeSucceeded = "succeeded"

// GenerationLog records one generation call, successful or not.
type GenerationLog struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Operation  string    `json:"operation"`
	Platform   string    `json:"platform,omitempty"`
	Attempts   int       `json:"attempts"`
	Outcome    string    `json:"outcome"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewGenerationLog creates a log entry with a fresh ID.
func NewGenerationLog(userID uuid.UUID, operation, platform string, attempts int, outcome string, duration time.Duration) *GenerationLog {
	return &GenerationLog{
		ID:         uuid.New(),
		UserID:     userID,
		Operation:  operation,
		Platform:   platform,
		Attempts:   attempts,
		Outcome:    outcome,
		DurationMs: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}

// Succeeded reports whether the call produced a result.
func (l *GenerationLog) Succeeded() bool {
	return l.Outcome == OutcomeSucceeded
}
