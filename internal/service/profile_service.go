package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/platform/logger"
	"github.com/phrazzld/postcraft-api/internal/store"
)

// KeySealer encrypts API keys before they are stored. *secret.Sealer
// implements it.
type KeySealer interface {
	Seal(plaintext string) ([]byte, error)
}

// HintFunc derives the display hint kept next to a sealed key.
type HintFunc func(key string) string

// ProfileUpdate is a partial profile change. Nil fields are left untouched.
// An APIKey pointing at an empty string removes the stored key.
type ProfileUpdate struct {
	DisplayName   *string
	PersonaPrompt *string
	APIKey        *string
}

// ProfileService manages user profiles and reports quota usage.
type ProfileService struct {
	profiles     store.ProfileStore
	usage        store.UsageStore
	sealer       KeySealer
	hint         HintFunc
	monthlyLimit int
	now          func() time.Time
	logger       *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(
	profiles store.ProfileStore,
	usage store.UsageStore,
	sealer KeySealer,
	hint HintFunc,
	monthlyLimit int,
	logger *slog.Logger,
) (*ProfileService, error) {
	if profiles == nil || usage == nil {
		return nil, errors.New("profile and usage stores cannot be nil")
	}
	if sealer == nil {
		return nil, errors.New("sealer cannot be nil")
	}
	if hint == nil {
		return nil, errors.New("hint func cannot be nil")
	}
	if monthlyLimit < 1 {
		return nil, fmt.Errorf("monthly limit must be positive, got %d", monthlyLimit)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &ProfileService{
		profiles:     profiles,
		usage:        usage,
		sealer:       sealer,
		hint:         hint,
		monthlyLimit: monthlyLimit,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "profile_service")),
	}, nil
}

// GetProfile returns the user's profile, or an empty one if none was saved.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return domain.NewProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve profile: %w", err)
	}
	return p, nil
}

// UpdateProfile applies update and saves the profile. A new API key is sealed
// before it is stored; only its hint stays readable.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*update.DisplayName)
	}
	if update.PersonaPrompt != nil {
		p.PersonaPrompt = strings.TrimSpace(*update.PersonaPrompt)
	}
	if update.APIKey != nil {
		key := strings.TrimSpace(*update.APIKey)
		if key == "" {
			p.SealedAPIKey = nil
			p.APIKeyHint = ""
		} else {
			sealed, err := s.sealer.Seal(key)
			if err != nil {
				return nil, fmt.Errorf("failed to seal API key: %w", err)
			}
			p.SealedAPIKey = sealed
			p.APIKeyHint = s.hint(key)
		}
	}
	p.UpdatedAt = s.now().UTC()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		log.Error("failed to save profile",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	log.Info("profile updated",
		slog.String("user_id", userID.String()),
		slog.Bool("api_key_changed", update.APIKey != nil),
		slog.Bool("has_api_key", p.HasAPIKey()))
	return p, nil
}

// Usage returns the user's quota for the current month.
func (s *ProfileService) Usage(ctx context.Context, userID uuid.UUID) (*domain.UsageQuota, error) {
	q, err := s.usage.Get(ctx, userID, s.monthlyLimit, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve usage: %w", err)
	}
	return q, nil
}
