package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/platform/logger"
	"github.com/phrazzld/postcraft-api/internal/store"
)

// PostgresUsageStore implements store.UsageStore.
type PostgresUsageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUsageStore creates a usage store on db.
func NewPostgresUsageStore(db store.DBTX, logger *slog.Logger) *PostgresUsageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUsageStore{
		db:     db,
		logger: logger.With(slog.String("component", "usage_store")),
	}
}

// Ensure PostgresUsageStore implements store.UsageStore interface
var _ store.UsageStore = (*PostgresUsageStore)(nil)

// consumeQuery reserves one generation in a single statement. A row from an
// earlier month restarts at 1; otherwise the WHERE clause rejects the update
// once the limit is reached and no row is returned.
const consumeQuery = `
	INSERT INTO usage_quotas (user_id, used, monthly_limit, period_start, updated_at)
	VALUES ($1, 1, $2, $3, $4)
	ON CONFLICT (user_id) DO UPDATE SET
		used = CASE
			WHEN usage_quotas.period_start < EXCLUDED.period_start THEN 1
			ELSE usage_quotas.used + 1
		END,
		period_start  = GREATEST(usage_quotas.period_start, EXCLUDED.period_start),
		monthly_limit = EXCLUDED.monthly_limit,
		updated_at    = EXCLUDED.updated_at
	WHERE CASE
			WHEN usage_quotas.period_start < EXCLUDED.period_start THEN 0
			ELSE usage_quotas.used
		END < EXCLUDED.monthly_limit
	RETURNING user_id, used, monthly_limit, period_start, updated_at
`

// Get implements store.UsageStore.Get. The monthly reset is applied to the
// returned value only; the row is corrected by the next Consume.
func (s *PostgresUsageStore) Get(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (*domain.UsageQuota, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var q domain.UsageQuota
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, used, monthly_limit, period_start, updated_at
		FROM usage_quotas
		WHERE user_id = $1
	`, userID).Scan(&q.UserID, &q.Used, &q.MonthlyLimit, &q.PeriodStart, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewUsageQuota(userID, limit, now), nil
		}
		log.Error("failed to get usage",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("usage_quota", "get", "query failed", MapError(err))
	}

	q.MonthlyLimit = limit
	q.ApplyReset(now)
	return &q, nil
}

// Consume implements store.UsageStore.Consume.
func (s *PostgresUsageStore) Consume(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (*domain.UsageQuota, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var q domain.UsageQuota
	err := s.db.QueryRowContext(ctx, consumeQuery,
		userID, limit, domain.MonthStart(now), now.UTC(),
	).Scan(&q.UserID, &q.Used, &q.MonthlyLimit, &q.PeriodStart, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("usage quota exhausted",
				slog.String("user_id", userID.String()),
				slog.Int("monthly_limit", limit))
			return nil, store.ErrQuotaExhausted
		}
		log.Error("failed to consume usage",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("usage_quota", "consume", "upsert failed", MapError(err))
	}

	log.Debug("usage consumed",
		slog.String("user_id", userID.String()),
		slog.Int("used", q.Used),
		slog.Int("monthly_limit", q.MonthlyLimit))
	return &q, nil
}

// Refund implements store.UsageStore.Refund. A refund for a period that has
// already rolled over is a no-op.
func (s *PostgresUsageStore) Refund(ctx context.Context, userID uuid.UUID, now time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE usage_quotas
		SET used = GREATEST(used - 1, 0), updated_at = $3
		WHERE user_id = $1 AND period_start = $2
	`, userID, domain.MonthStart(now), now.UTC())
	if err != nil {
		log.Error("failed to refund usage",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return store.NewStoreError("usage_quota", "refund", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(result, "usage quota"); err != nil {
		log.Debug("nothing to refund",
			slog.String("user_id", userID.String()),
			slog.String("reason", err.Error()))
	}
	return nil
}

// WithTx implements store.UsageStore.WithTx.
func (s *PostgresUsageStore) WithTx(tx *sql.Tx) store.UsageStore {
	return &PostgresUsageStore{db: tx, logger: s.logger}
}
