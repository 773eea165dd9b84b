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

// PostgresProfileStore implements store.ProfileStore.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a profile store on db.
func NewPostgresProfileStore(db store.DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

// Ensure PostgresProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// Get implements store.ProfileStore.Get.
func (s *PostgresProfileStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var p domain.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, display_name, persona_prompt, sealed_api_key, api_key_hint, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.PersonaPrompt,
		&p.SealedAPIKey,
		&p.APIKeyHint,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		log.Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("profile", "get", "query failed", MapError(err))
	}
	return &p, nil
}

// Upsert implements store.ProfileStore.Upsert.
func (s *PostgresProfileStore) Upsert(ctx context.Context, p *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, persona_prompt, sealed_api_key, api_key_hint, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name   = EXCLUDED.display_name,
			persona_prompt = EXCLUDED.persona_prompt,
			sealed_api_key = EXCLUDED.sealed_api_key,
			api_key_hint   = EXCLUDED.api_key_hint,
			updated_at     = EXCLUDED.updated_at
	`, p.UserID, p.DisplayName, p.PersonaPrompt, p.SealedAPIKey, p.APIKeyHint, p.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, p.UserID)
		}
		log.Error("failed to upsert profile",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return store.NewStoreError("profile", "upsert", "write failed", MapError(err))
	}

	log.Debug("profile saved",
		slog.String("user_id", p.UserID.String()),
		slog.Bool("has_api_key", p.HasAPIKey()))
	return nil
}

// WithTx implements store.ProfileStore.WithTx.
func (s *PostgresProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return &PostgresProfileStore{db: tx, logger: s.logger}
}
