package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// Create saves a new user. The user's HashedPassword must already be set.
	// Returns ErrEmailExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail looks a user up case-insensitively.
	// Returns ErrUserNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	// Get returns ErrProfileNotFound if the user has no profile yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)

	// Upsert creates or replaces the profile for profile.UserID.
	Upsert(ctx context.Context, profile *domain.Profile) error

	WithTx(tx *sql.Tx) ProfileStore
}

// UsageStore tracks monthly generation quotas. Every method applies the
// monthly reset rule for now before reading or changing the counter.
type UsageStore interface {
	// Get returns the user's current usage, creating an empty record with
	// limit when none exists.
	Get(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (*domain.UsageQuota, error)

	// Consume atomically reserves one generation. It returns ErrQuotaExhausted
	// without changing anything when the user has none left.
	Consume(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (*domain.UsageQuota, error)

	// Refund returns one previously consumed generation. It never drives the
	// counter below zero.
	Refund(ctx context.Context, userID uuid.UUID, now time.Time) error

	WithTx(tx *sql.Tx) UsageStore
}

// DraftStore persists generated and tuned posts.
type DraftStore interface {
	Create(ctx context.Context, draft *domain.PostDraft) error

	// GetByID returns ErrDraftNotFound if the draft does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PostDraft, error)

	// ListByUser returns the user's most recent drafts, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PostDraft, error)

	WithTx(tx *sql.Tx) DraftStore
}

// GenerationLogStore records generation calls.
type GenerationLogStore interface {
	Create(ctx context.Context, entry *domain.GenerationLog) error

	// ListByUser returns the user's most recent entries, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.GenerationLog, error)
}
