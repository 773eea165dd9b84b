package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/content"
	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/generation"
	"github.com/phrazzld/postcraft-api/internal/platform/logger"
	"github.com/phrazzld/postcraft-api/internal/redact"
	"github.com/phrazzld/postcraft-api/internal/store"
)

// Generator is the generation core as seen by the service layer.
// *generation.Service implements it.
type Generator interface {
	Summarize(ctx context.Context, content string, creds generation.Credentials) (*generation.SummarizeResult, error)
	GeneratePost(
		ctx context.Context,
		summary string,
		platform generation.Platform,
		creds generation.Credentials,
	) (*generation.GeneratePostResult, error)
	TunePost(
		ctx context.Context,
		postContent string,
		platform generation.Platform,
		instruction string,
		persona string,
		creds generation.Credentials,
	) (*generation.TunePostResult, error)
}

// KeyOpener decrypts API keys stored on profiles. *secret.Sealer implements it.
type KeyOpener interface {
	Open(sealed []byte) (string, error)
}

// SummarizeInput is the input of ContentService.Summarize. Content is either
// literal text or a URL to fetch.
type SummarizeInput struct {
	Content string
	APIKey  string
}

// SummarizeOutput is the result of ContentService.Summarize.
type SummarizeOutput struct {
	Summary string
	// SourcePlaceholder is true when Content was a URL that could not be
	// fetched and the summary is based on the URL alone.
	SourcePlaceholder bool
	SourceTitle       string
	Attempts          int
}

// GeneratePostInput is the input of ContentService.GeneratePost.
type GeneratePostInput struct {
	Summary  string
	Platform string
	APIKey   string
}

// GeneratePostOutput is the result of ContentService.GeneratePost. DraftID is
// uuid.Nil when the post was generated but could not be saved.
type GeneratePostOutput struct {
	Post     string
	DraftID  uuid.UUID
	Attempts int
}

// TunePostInput is the input of ContentService.TunePost. An empty
// PersonaPrompt falls back to the persona stored on the user's profile.
type TunePostInput struct {
	PostContent   string
	Platform      string
	Instruction   string
	PersonaPrompt string
	ParentID      *uuid.UUID
	APIKey        string
}

// TunePostOutput is the result of ContentService.TunePost.
type TunePostOutput struct {
	TunedPost string
	DraftID   uuid.UUID
	Attempts  int
}

// ContentDeps holds the collaborators of ContentService.
type ContentDeps struct {
	Generator    Generator
	Source       content.Source
	Profiles     store.ProfileStore
	Usage        store.UsageStore
	Drafts       store.DraftStore
	Logs         store.GenerationLogStore
	Keys         KeyOpener
	MonthlyLimit int
}

// ContentService runs summarize, generate and tune for authenticated users.
type ContentService struct {
	gen          Generator
	source       content.Source
	profiles     store.ProfileStore
	usage        store.UsageStore
	drafts       store.DraftStore
	logs         store.GenerationLogStore
	keys         KeyOpener
	monthlyLimit int
	now          func() time.Time
	logger       *slog.Logger
}

// NewContentService validates deps and creates a ContentService.
func NewContentService(deps ContentDeps, logger *slog.Logger) (*ContentService, error) {
	switch {
	case deps.Generator == nil:
		return nil, errors.New("generator cannot be nil")
	case deps.Profiles == nil:
		return nil, errors.New("profile store cannot be nil")
	case deps.Usage == nil:
		return nil, errors.New("usage store cannot be nil")
	case deps.Drafts == nil:
		return nil, errors.New("draft store cannot be nil")
	case deps.Logs == nil:
		return nil, errors.New("generation log store cannot be nil")
	case deps.Keys == nil:
		return nil, errors.New("key opener cannot be nil")
	case deps.MonthlyLimit < 1:
		return nil, fmt.Errorf("monthly limit must be positive, got %d", deps.MonthlyLimit)
	case logger == nil:
		return nil, errors.New("logger cannot be nil")
	}

	return &ContentService{
		gen:          deps.Generator,
		source:       deps.Source,
		profiles:     deps.Profiles,
		usage:        deps.Usage,
		drafts:       deps.Drafts,
		logs:         deps.Logs,
		keys:         deps.Keys,
		monthlyLimit: deps.MonthlyLimit,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "content_service")),
	}, nil
}

// Summarize resolves the input to text and summarizes it. Summaries are not
// metered against the monthly quota.
func (s *ContentService) Summarize(ctx context.Context, userID uuid.UUID, in SummarizeInput) (*SummarizeOutput, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	creds, _, err := s.resolveCredentials(ctx, userID, in.APIKey)
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, userID, generation.Request{
		Operation: generation.OperationSummarize,
		APIKey:    creds.APIKey,
	}); err != nil {
		return nil, err
	}

	doc := content.Resolve(ctx, s.source, in.Content)
	if doc.IsPlaceholder {
		log.Info("summarizing from placeholder text",
			slog.String("user_id", userID.String()),
			slog.String("url", doc.URL))
	}

	start := time.Now()
	res, err := s.gen.Summarize(ctx, doc.Body, creds)
	s.record(ctx, userID, generation.OperationSummarize, "", summarizeAttempts(res), err, time.Since(start))
	if err != nil {
		return nil, err
	}

	return &SummarizeOutput{
		Summary:           res.Summary,
		SourcePlaceholder: doc.IsPlaceholder,
		SourceTitle:       doc.Title,
		Attempts:          res.Attempts,
	}, nil
}

// GeneratePost writes a post for the platform from a summary and saves it as
// a draft. It consumes one unit of the monthly quota, which is returned if
// generation fails.
func (s *ContentService) GeneratePost(ctx context.Context, userID uuid.UUID, in GeneratePostInput) (*GeneratePostOutput, error) {
	platform, err := generation.ParsePlatform(in.Platform)
	if err != nil {
		return nil, err
	}

	creds, _, err := s.resolveCredentials(ctx, userID, in.APIKey)
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, userID, generation.Request{
		Operation: generation.OperationGenerate,
		APIKey:    creds.APIKey,
		Platform:  platform,
		Summary:   in.Summary,
	}); err != nil {
		return nil, err
	}

	if err := s.reserve(ctx, userID); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.gen.GeneratePost(ctx, in.Summary, platform, creds)
	s.record(ctx, userID, generation.OperationGenerate, platform, generateAttempts(res), err, time.Since(start))
	if err != nil {
		s.refund(ctx, userID)
		return nil, err
	}

	draft := s.saveDraft(ctx, userID, platform, domain.DraftKindGenerated, res.Post, func(d *domain.PostDraft) {
		d.SourceSummary = in.Summary
	})

	return &GeneratePostOutput{
		Post:     res.Post,
		DraftID:  draft,
		Attempts: res.Attempts,
	}, nil
}

// TunePost revises a post following an instruction and saves the result as a
// tuned draft. When ParentID is set it must name one of the user's drafts.
// Tuning is metered like GeneratePost.
func (s *ContentService) TunePost(ctx context.Context, userID uuid.UUID, in TunePostInput) (*TunePostOutput, error) {
	platform, err := generation.ParsePlatform(in.Platform)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		if err := s.checkParent(ctx, userID, *in.ParentID); err != nil {
			return nil, err
		}
	}

	creds, profile, err := s.resolveCredentials(ctx, userID, in.APIKey)
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, userID, generation.Request{
		Operation:   generation.OperationTune,
		APIKey:      creds.APIKey,
		Platform:    platform,
		Instruction: in.Instruction,
	}); err != nil {
		return nil, err
	}

	persona := strings.TrimSpace(in.PersonaPrompt)
	if persona == "" && profile != nil {
		persona = profile.PersonaPrompt
	}

	if err := s.reserve(ctx, userID); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.gen.TunePost(ctx, in.PostContent, platform, in.Instruction, persona, creds)
	s.record(ctx, userID, generation.OperationTune, platform, tuneAttempts(res), err, time.Since(start))
	if err != nil {
		s.refund(ctx, userID)
		return nil, err
	}

	draft := s.saveDraft(ctx, userID, platform, domain.DraftKindTuned, res.TunedPost, func(d *domain.PostDraft) {
		d.Instruction = in.Instruction
		d.ParentID = in.ParentID
	})

	return &TunePostOutput{
		TunedPost: res.TunedPost,
		DraftID:   draft,
		Attempts:  res.Attempts,
	}, nil
}

// ListDrafts returns the user's most recent drafts, newest first.
func (s *ContentService) ListDrafts(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PostDraft, error) {
	drafts, err := s.drafts.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// ListHistory returns the user's most recent generation calls.
func (s *ContentService) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.GenerationLog, error) {
	entries, err := s.logs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generation history: %w", err)
	}
	return entries, nil
}

// resolveCredentials picks the request key when one was sent, otherwise the
// key stored on the user's profile. A user with neither gets empty
// credentials, which guard rejects as invalid input. The profile is
// returned when it was loaded.
func (s *ContentService) resolveCredentials(
	ctx context.Context,
	userID uuid.UUID,
	requestKey string,
) (generation.Credentials, *domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	profile, err := s.profiles.Get(ctx, userID)
	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		profile = nil
	case err != nil:
		return generation.Credentials{}, nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if key := strings.TrimSpace(requestKey); key != "" {
		return generation.Credentials{APIKey: key}, profile, nil
	}
	if profile == nil || !profile.HasAPIKey() {
		return generation.Credentials{}, profile, nil
	}

	key, err := s.keys.Open(profile.SealedAPIKey)
	if err != nil {
		log.Error("failed to open stored API key",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return generation.Credentials{}, nil, fmt.Errorf("%w: %w", ErrStoredKeyUnreadable, err)
	}
	log.Debug("using stored API key",
		slog.String("user_id", userID.String()),
		slog.String("key", redact.Key(key)))
	return generation.Credentials{APIKey: key}, profile, nil
}

// guard rejects a request without a credential before any fetch, quota
// write or model call. The rejection is still recorded.
func (s *ContentService) guard(ctx context.Context, userID uuid.UUID, req generation.Request) error {
	terr := generation.CheckCredential(req)
	if terr == nil {
		return nil
	}
	s.record(ctx, userID, req.Operation, req.Platform, 0, terr, 0)
	return terr
}

func (s *ContentService) checkParent(ctx context.Context, userID, parentID uuid.UUID) error {
	parent, err := s.drafts.GetByID(ctx, parentID)
	if err != nil {
		return fmt.Errorf("failed to load parent draft: %w", err)
	}
	if parent.UserID != userID {
		return fmt.Errorf("%w: draft %s", ErrNotOwned, parentID)
	}
	return nil
}

func (s *ContentService) reserve(ctx context.Context, userID uuid.UUID) error {
	q, err := s.usage.Consume(ctx, userID, s.monthlyLimit, s.now())
	if err != nil {
		if errors.Is(err, store.ErrQuotaExhausted) {
			logger.FromContextOrDefault(ctx, s.logger).Info("generation quota exhausted",
				slog.String("user_id", userID.String()),
				slog.Int("monthly_limit", s.monthlyLimit))
			return ErrQuotaExceeded
		}
		return fmt.Errorf("failed to reserve generation quota: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("generation quota reserved",
		slog.String("user_id", userID.String()),
		slog.Int("used", q.Used),
		slog.Int("remaining", q.Remaining()))
	return nil
}

// refund returns a reserved unit. It runs even when ctx was cancelled, since
// the reservation was already committed.
func (s *ContentService) refund(ctx context.Context, userID uuid.UUID) {
	if err := s.usage.Refund(context.WithoutCancel(ctx), userID, s.now()); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to refund generation quota",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
	}
}

// saveDraft persists a generated post. A storage failure is logged and
// reported as uuid.Nil so the caller still receives the text it paid for.
func (s *ContentService) saveDraft(
	ctx context.Context,
	userID uuid.UUID,
	platform generation.Platform,
	kind domain.DraftKind,
	text string,
	fill func(*domain.PostDraft),
) uuid.UUID {
	log := logger.FromContextOrDefault(ctx, s.logger)

	draft, err := domain.NewPostDraft(userID, string(platform), kind, text)
	if err != nil {
		log.Error("generated post failed draft validation",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return uuid.Nil
	}
	fill(draft)

	if err := s.drafts.Create(context.WithoutCancel(ctx), draft); err != nil {
		log.Error("failed to save draft",
			slog.String("user_id", userID.String()),
			slog.String("kind", string(kind)),
			slog.String("error", redact.Error(err)))
		return uuid.Nil
	}
	return draft.ID
}

// record writes a generation log entry. Failures are logged and otherwise
// ignored.
func (s *ContentService) record(
	ctx context.Context,
	userID uuid.UUID,
	op generation.Operation,
	platform generation.Platform,
	attempts int,
	callErr error,
	duration time.Duration,
) {
	outcome := domain.OutcomeSucceeded
	if callErr != nil {
		outcome = generation.Unknown.String()
		var terr *generation.TerminalError
		if errors.As(callErr, &terr) {
			outcome = terr.Classification.String()
			attempts = terr.Attempts
		}
	}

	entry := domain.NewGenerationLog(userID, string(op), string(platform), attempts, outcome, duration)
	if err := s.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to record generation call",
			slog.String("user_id", userID.String()),
			slog.String("operation", string(op)),
			slog.String("error", redact.Error(err)))
	}
}

func summarizeAttempts(r *generation.SummarizeResult) int {
	if r == nil {
		return 0
	}
	return r.Attempts
}

func generateAttempts(r *generation.GeneratePostResult) int {
	if r == nil {
		return 0
	}
	return r.Attempts
}

func tuneAttempts(r *generation.TunePostResult) int {
	if r == nil {
		return 0
	}
	return r.Attempts
}
