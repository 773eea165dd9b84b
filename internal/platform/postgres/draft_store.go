package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/platform/logger"
	"github.com/phrazzld/postcraft-api/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// PostgresDraftStore implements store.DraftStore.
type PostgresDraftStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDraftStore creates a draft store on db.
func NewPostgresDraftStore(db store.DBTX, logger *slog.Logger) *PostgresDraftStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDraftStore{
		db:     db,
		logger: logger.With(slog.String("component", "draft_store")),
	}
}

// Ensure PostgresDraftStore implements store.DraftStore interface
var _ store.DraftStore = (*PostgresDraftStore)(nil)

// Create implements store.DraftStore.Create.
// Returns store.ErrInvalidEntity if the user or parent draft doesn't exist.
func (s *PostgresDraftStore) Create(ctx context.Context, d *domain.PostDraft) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := d.Validate(); err != nil {
		log.Warn("draft validation failed during create",
			slog.String("error", err.Error()),
			slog.String("draft_id", d.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_drafts
			(id, user_id, platform, kind, content, source_summary, instruction, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.ID, d.UserID, d.Platform, string(d.Kind), d.Content, d.SourceSummary, d.Instruction, d.ParentID, d.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during draft creation",
				slog.String("draft_id", d.ID.String()),
				slog.String("user_id", d.UserID.String()))
			return fmt.Errorf("%w: user or parent draft not found", store.ErrInvalidEntity)
		}
		log.Error("failed to create draft",
			slog.String("error", err.Error()),
			slog.String("draft_id", d.ID.String()))
		return store.NewStoreError("post_draft", "create", "insert failed", MapError(err))
	}

	log.Info("draft saved",
		slog.String("draft_id", d.ID.String()),
		slog.String("user_id", d.UserID.String()),
		slog.String("kind", string(d.Kind)))
	return nil
}

// GetByID implements store.DraftStore.GetByID.
func (s *PostgresDraftStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PostDraft, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, platform, kind, content, source_summary, instruction, parent_id, created_at
		FROM post_drafts
		WHERE id = $1
	`, id)
	d, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDraftNotFound
		}
		log.Error("failed to get draft",
			slog.String("error", err.Error()),
			slog.String("draft_id", id.String()))
		return nil, store.NewStoreError("post_draft", "get", "query failed", MapError(err))
	}
	return d, nil
}

// ListByUser implements store.DraftStore.ListByUser.
func (s *PostgresDraftStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PostDraft, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, platform, kind, content, source_summary, instruction, parent_id, created_at
		FROM post_drafts
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, clampLimit(limit))
	if err != nil {
		log.Error("failed to list drafts",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("post_draft", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	drafts := make([]*domain.PostDraft, 0)
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, store.NewStoreError("post_draft", "list", "scan failed", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("post_draft", "list", "iteration failed", err)
	}
	return drafts, nil
}

// WithTx implements store.DraftStore.WithTx.
func (s *PostgresDraftStore) WithTx(tx *sql.Tx) store.DraftStore {
	return &PostgresDraftStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*domain.PostDraft, error) {
	var (
		d        domain.PostDraft
		kind     string
		parentID uuid.NullUUID
	)
	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Platform,
		&kind,
		&d.Content,
		&d.SourceSummary,
		&d.Instruction,
		&parentID,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.Kind = domain.DraftKind(kind)
	if parentID.Valid {
		id := parentID.UUID
		d.ParentID = &id
	}
	return &d, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
