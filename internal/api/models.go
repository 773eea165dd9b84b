package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
	// ExpiresAt is the RFC 3339 time the token expires.
	ExpiresAt string `json:"expires_at"`
}

// ProfileRequest updates a profile. Omitted fields are left unchanged and an
// empty api_key removes the stored key.
type ProfileRequest struct {
	DisplayName   *string `json:"display_name"   validate:"omitempty,max=100"`
	PersonaPrompt *string `json:"persona_prompt" validate:"omitempty,max=2000"`
	APIKey        *string `json:"api_key"        validate:"omitempty,max=256"`
}

// ProfileResponse is a user's profile. The API key itself is never returned.
type ProfileResponse struct {
	DisplayName   string `json:"display_name"`
	PersonaPrompt string `json:"persona_prompt"`
	APIKeyHint    string `json:"api_key_hint"`
	HasAPIKey     bool   `json:"has_api_key"`
}

// UsageResponse reports the monthly generation quota.
type UsageResponse struct {
	Used         int       `json:"used"`
	MonthlyLimit int       `json:"monthly_limit"`
	Remaining    int       `json:"remaining"`
	PeriodStart  time.Time `json:"period_start"`
}

// SummarizeRequest asks for a summary of literal text or of the page at a
// URL.
type SummarizeRequest struct {
	Content string `json:"content" validate:"required,max=100000"`
	APIKey  string `json:"api_key" validate:"omitempty,max=256"`
}

// SummarizeResponse is the result of a summarize call.
type SummarizeResponse struct {
	Summary           string `json:"summary"`
	SourcePlaceholder bool   `json:"source_placeholder"`
	SourceTitle       string `json:"source_title,omitempty"`
	Attempts          int    `json:"attempts"`
}

// GeneratePostRequest asks for a post written from a summary.
type GeneratePostRequest struct {
	Summary  string `json:"summary"  validate:"required,max=20000"`
	Platform string `json:"platform" validate:"required"`
	APIKey   string `json:"api_key"  validate:"omitempty,max=256"`
}

// GeneratePostResponse is the generated post. DraftID is omitted when the
// draft could not be saved.
type GeneratePostResponse struct {
	Post     string     `json:"post"`
	DraftID  *uuid.UUID `json:"draft_id,omitempty"`
	Attempts int        `json:"attempts"`
}

// TunePostRequest asks for a revision of an existing post.
type TunePostRequest struct {
	PostContent   string     `json:"post_content"   validate:"required,max=20000"`
	Platform      string     `json:"platform"       validate:"required"`
	Instruction   string     `json:"instruction"    validate:"required,max=2000"`
	PersonaPrompt string     `json:"persona_prompt" validate:"omitempty,max=2000"`
	ParentID      *uuid.UUID `json:"parent_id"`
	APIKey        string     `json:"api_key"        validate:"omitempty,max=256"`
}

// TunePostResponse is the revised post.
type TunePostResponse struct {
	TunedPost string     `json:"tuned_post"`
	DraftID   *uuid.UUID `json:"draft_id,omitempty"`
	Attempts  int        `json:"attempts"`
}

// DraftResponse is one saved post.
type DraftResponse struct {
	ID        uuid.UUID  `json:"id"`
	Platform  string     `json:"platform"`
	Kind      string     `json:"kind"`
	Content   string     `json:"content"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// HistoryResponse is one recorded generation call.
type HistoryResponse struct {
	ID         uuid.UUID `json:"id"`
	Operation  string    `json:"operation"`
	Platform   string    `json:"platform,omitempty"`
	Attempts   int       `json:"attempts"`
	Outcome    string    `json:"outcome"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

func toProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		DisplayName:   p.DisplayName,
		PersonaPrompt: p.PersonaPrompt,
		APIKeyHint:    p.APIKeyHint,
		HasAPIKey:     p.HasAPIKey(),
	}
}

func toUsageResponse(q *domain.UsageQuota) UsageResponse {
	return UsageResponse{
		Used:         q.Used,
		MonthlyLimit: q.MonthlyLimit,
		Remaining:    q.Remaining(),
		PeriodStart:  q.PeriodStart,
	}
}

func toDraftResponses(drafts []*domain.PostDraft) []DraftResponse {
	out := make([]DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, DraftResponse{
			ID:        d.ID,
			Platform:  d.Platform,
			Kind:      string(d.Kind),
			Content:   d.Content,
			ParentID:  d.ParentID,
			CreatedAt: d.CreatedAt,
		})
	}
	return out
}

func toHistoryResponses(entries []*domain.GenerationLog) []HistoryResponse {
	out := make([]HistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryResponse{
			ID:         e.ID,
			Operation:  e.Operation,
			Platform:   e.Platform,
			Attempts:   e.Attempts,
			Outcome:    e.Outcome,
			DurationMs: e.DurationMs,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

// draftRef returns nil for an unsaved draft.
func draftRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
