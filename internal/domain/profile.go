package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxDisplayNameLength is the longest display name accepted, in runes.
	MaxDisplayNameLength = 100
	// MaxPersonaPromptLength is the longest persona prompt accepted, in runes.
	MaxPersonaPromptLength = 2000
)

// Profile holds a user's writing persona and their stored Gemini API key.
// SealedAPIKey is ciphertext; the plaintext key is never kept on the entity.
type Profile struct {
	UserID        uuid.UUID `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	PersonaPrompt string    `json:"persona_prompt"`
	SealedAPIKey  []byte    `json:"-"`
	APIKeyHint    string    `json:"api_key_hint"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProfile returns an empty profile for userID.
func NewProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}
}

// HasAPIKey reports whether a key has been stored.
func (p *Profile) HasAPIKey() bool {
	return len(p.SealedAPIKey) > 0
}

// Validate checks field lengths.
func (p *Profile) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if utf8.RuneCountInString(p.DisplayName) > MaxDisplayNameLength {
		return fmt.Errorf("%w: display name exceeds %d characters", ErrValidation, MaxDisplayNameLength)
	}
	if utf8.RuneCountInString(p.PersonaPrompt) > MaxPersonaPromptLength {
		return fmt.Errorf("%w: persona prompt exceeds %d characters", ErrValidation, MaxPersonaPromptLength)
	}
	return nil
}
