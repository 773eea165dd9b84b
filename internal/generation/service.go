package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Service runs summarize, generate and tune calls through the shared
// guard, invoke, classify, retry and normalize pipeline.
type Service struct {
	models   ModelFactory
	config   RetryConfig
	prompts  *promptSet
	sleep    Sleeper
	observer Observer
	logger   *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithSleeper replaces the backoff sleeper. Tests use it to record delays
// without waiting.
func WithSleeper(sleep Sleeper) Option {
	return func(s *Service) {
		s.sleep = sleep
	}
}

// WithObserver registers an observer for retry loop events.
func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service backed by the given model factory.
func NewService(models ModelFactory, config RetryConfig, opts ...Option) (*Service, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: model factory cannot be nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	prompts, err := loadPrompts()
	if err != nil {
		return nil, err
	}

	s := &Service{
		models:   models,
		config:   config,
		prompts:  prompts,
		sleep:    sleepContext,
		observer: nopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "generation"))

	return s, nil
}

// SummarizeResult is the output of Summarize.
type SummarizeResult struct {
	Summary  string
	Attempts int
}

// GeneratePostResult is the output of GeneratePost.
type GeneratePostResult struct {
	Post     string
	Attempts int
}

// TunePostResult is the output of TunePost.
type TunePostResult struct {
	TunedPost string
	Attempts  int
}

// Summarize condenses content into a short summary.
func (s *Service) Summarize(ctx context.Context, content string, creds Credentials) (*SummarizeResult, error) {
	text, attempts, err := s.Execute(ctx, Request{
		Operation: OperationSummarize,
		APIKey:    creds.APIKey,
		Content:   content,
	})
	if err != nil {
		return nil, err
	}
	return &SummarizeResult{Summary: text, Attempts: attempts}, nil
}

// GeneratePost writes a post for platform from a summary.
func (s *Service) GeneratePost(
	ctx context.Context,
	summary string,
	platform Platform,
	creds Credentials,
) (*GeneratePostResult, error) {
	text, attempts, err := s.Execute(ctx, Request{
		Operation: OperationGenerate,
		APIKey:    creds.APIKey,
		Platform:  platform,
		Summary:   summary,
	})
	if err != nil {
		return nil, err
	}
	return &GeneratePostResult{Post: text, Attempts: attempts}, nil
}

// TunePost revises an existing post following instruction. persona is
// optional.
func (s *Service) TunePost(
	ctx context.Context,
	postContent string,
	platform Platform,
	instruction string,
	persona string,
	creds Credentials,
) (*TunePostResult, error) {
	text, attempts, err := s.Execute(ctx, Request{
		Operation:   OperationTune,
		APIKey:      creds.APIKey,
		Platform:    platform,
		PostContent: postContent,
		Instruction: instruction,
		Persona:     persona,
	})
	if err != nil {
		return nil, err
	}
	return &TunePostResult{TunedPost: text, Attempts: attempts}, nil
}

// Execute runs one request through the full pipeline and returns the
// generated text and the number of remote calls made. Any returned error is a
// *TerminalError.
func (s *Service) Execute(ctx context.Context, req Request) (string, int, error) {
	start := time.Now()
	log := s.logger.With(slog.String("operation", string(req.Operation)))
	if req.Platform != "" {
		log = log.With(slog.String("platform", string(req.Platform)))
	}

	text, attempts, terr := s.execute(ctx, req, log)
	s.observer.CallFinished(req.Operation, attempts, time.Since(start), terr)

	if terr != nil {
		log.ErrorContext(ctx, "generation failed",
			slog.String("classification", terr.Classification.String()),
			slog.Int("attempts", terr.Attempts),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return "", attempts, terr
	}

	log.InfoContext(ctx, "generation succeeded",
		slog.Int("attempts", attempts),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return text, attempts, nil
}

// CheckCredential is the credential guard. It returns the InvalidInput
// TerminalError for a blank key and nil otherwise. Callers that do I/O on
// behalf of a request run it first so nothing leaves the process without a
// key.
func CheckCredential(req Request) *TerminalError {
	if strings.TrimSpace(req.APIKey) != "" {
		return nil
	}
	return newTerminalError(req, InvalidInput,
		"an API key is required; add one to your profile or include it in the request",
		0, fmt.Errorf("%w: missing API key", ErrInvalidInput))
}

func (s *Service) execute(ctx context.Context, req Request, log *slog.Logger) (string, int, *TerminalError) {
	if terr := CheckCredential(req); terr != nil {
		return "", 0, terr
	}

	if err := req.validate(); err != nil {
		return "", 0, newTerminalError(req, InvalidInput, "", 0, err)
	}

	call, err := s.prompts.render(req)
	if err != nil {
		return "", 0, newTerminalError(req, Classify(err), "", 0, err)
	}

	model, err := s.models.ForCredential(ctx, req.APIKey)
	if err != nil {
		class := Classify(err)
		if errors.Is(err, ErrInvalidConfig) {
			class = Unknown
		}
		return "", 0, newTerminalError(req, class, "", 0, err)
	}

	exec := &executor{
		config:   s.config,
		sleep:    s.sleep,
		observer: s.observer,
		logger:   log,
	}
	result := exec.run(ctx, model, call)
	if result.failure != nil {
		return "", result.attempts, newTerminalError(req, result.failure.Classification, "",
			result.attempts, result.failure.Err)
	}

	return result.text, result.attempts, nil
}
