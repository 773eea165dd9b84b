package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/api/shared"
	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/platform/logger"
	"github.com/phrazzld/postcraft-api/internal/service"
)

// ContentService is the part of *service.ContentService the handler uses.
type ContentService interface {
	Summarize(ctx context.Context, userID uuid.UUID, in service.SummarizeInput) (*service.SummarizeOutput, error)
	GeneratePost(ctx context.Context, userID uuid.UUID, in service.GeneratePostInput) (*service.GeneratePostOutput, error)
	TunePost(ctx context.Context, userID uuid.UUID, in service.TunePostInput) (*service.TunePostOutput, error)
	ListDrafts(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PostDraft, error)
	ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.GenerationLog, error)
}

// ContentHandler serves summarize, generate and tune requests.
type ContentHandler struct {
	content ContentService
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(content ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// Summarize handles POST /api/summaries.
func (h *ContentHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SummarizeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	out, err := h.content.Summarize(r.Context(), userID, service.SummarizeInput{
		Content: req.Content,
		APIKey:  req.APIKey,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to summarize content")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SummarizeResponse{
		Summary:           out.Summary,
		SourcePlaceholder: out.SourcePlaceholder,
		SourceTitle:       out.SourceTitle,
		Attempts:          out.Attempts,
	})
}

// GeneratePost handles POST /api/posts.
func (h *ContentHandler) GeneratePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req GeneratePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	out, err := h.content.GeneratePost(r.Context(), userID, service.GeneratePostInput{
		Summary:  req.Summary,
		Platform: req.Platform,
		APIKey:   req.APIKey,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate post")
		return
	}

	logger.FromContext(r.Context()).Info("post generated",
		slog.String("platform", req.Platform),
		slog.Int("attempts", out.Attempts))

	shared.RespondWithJSON(w, r, http.StatusCreated, GeneratePostResponse{
		Post:     out.Post,
		DraftID:  draftRef(out.DraftID),
		Attempts: out.Attempts,
	})
}

// TunePost handles POST /api/posts/tune.
func (h *ContentHandler) TunePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req TunePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	out, err := h.content.TunePost(r.Context(), userID, service.TunePostInput{
		PostContent:   req.PostContent,
		Platform:      req.Platform,
		Instruction:   req.Instruction,
		PersonaPrompt: req.PersonaPrompt,
		ParentID:      req.ParentID,
		APIKey:        req.APIKey,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to tune post")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, TunePostResponse{
		TunedPost: out.TunedPost,
		DraftID:   draftRef(out.DraftID),
		Attempts:  out.Attempts,
	})
}

// ListPosts handles GET /api/posts.
func (h *ContentHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	drafts, err := h.content.ListDrafts(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list posts")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toDraftResponses(drafts))
}

// ListHistory handles GET /api/history.
func (h *ContentHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	entries, err := h.content.ListHistory(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list history")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toHistoryResponses(entries))
}
