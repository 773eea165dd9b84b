package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DraftKind says how a draft was produced.
type DraftKind string

const (
	DraftKindGenerated DraftKind = "generated"
	DraftKindTuned     DraftKind = "tuned"
)

// Valid reports whether k is a known kind.
func (k DraftKind) Valid() bool {
	return k == DraftKindGenerated || k == DraftKindTuned
}

// PostDraft is a generated or tuned post saved for the user.
type PostDraft struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Platform      string     `json:"platform"`
	Kind          DraftKind  `json:"kind"`
	Content       string     `json:"content"`
	SourceSummary string     `json:"source_summary,omitempty"`
	Instruction   string     `json:"instruction,omitempty"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewPostDraft creates a validated draft with a fresh ID.
func NewPostDraft(userID uuid.UUID, platform string, kind DraftKind, content string) (*PostDraft, error) {
	draft := &PostDraft{
		ID:        uuid.New(),
		UserID:    userID,
		Platform:  platform,
		Kind:      kind,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return draft, nil
}

// Validate checks required fields.
func (d *PostDraft) Validate() error {
	if d.ID == uuid.Nil {
		return fmt.Errorf("%w: draft ID cannot be empty", ErrInvalidID)
	}
	if d.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(d.Platform) == "" {
		return fmt.Errorf("%w: platform cannot be empty", ErrValidation)
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDraftKind, d.Kind)
	}
	if strings.TrimSpace(d.Content) == "" {
		return ErrEmptyContent
	}
	if d.ParentID != nil && *d.ParentID == uuid.Nil {
		return fmt.Errorf("%w: parent ID cannot be nil UUID", ErrInvalidID)
	}
	return nil
}
