package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/platform/logger"
	"github.com/phrazzld/postcraft-api/internal/store"
)

// PostgresGenerationLogStore implements store.GenerationLogStore.
type PostgresGenerationLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGenerationLogStore creates a generation log store on db.
func NewPostgresGenerationLogStore(db store.DBTX, logger *slog.Logger) *PostgresGenerationLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGenerationLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_log_store")),
	}
}

// Ensure PostgresGenerationLogStore implements store.GenerationLogStore interface
var _ store.GenerationLogStore = (*PostgresGenerationLogStore)(nil)

// Create implements store.GenerationLogStore.Create.
func (s *PostgresGenerationLogStore) Create(ctx context.Context, e *domain.GenerationLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_logs
			(id, user_id, operation, platform, attempts, outcome, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.UserID, e.Operation, e.Platform, e.Attempts, e.Outcome, e.DurationMs, e.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to write generation log",
			slog.String("error", err.Error()),
			slog.String("user_id", e.UserID.String()))
		return store.NewStoreError("generation_log", "create", "insert failed", MapError(err))
	}
	return nil
}

// ListByUser implements store.GenerationLogStore.ListByUser.
func (s *PostgresGenerationLogStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.GenerationLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, operation, platform, attempts, outcome, duration_ms, created_at
		FROM generation_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, clampLimit(limit))
	if err != nil {
		return nil, store.NewStoreError("generation_log", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.GenerationLog
	for rows.Next() {
		var e domain.GenerationLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Operation, &e.Platform, &e.Attempts, &e.Outcome, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, store.NewStoreError("generation_log", "list", "scan failed", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("generation_log", "list", "iteration failed", err)
	}
	return entries, nil
}
