package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/phrazzld/postcraft-api/internal/config"
	"github.com/phrazzld/postcraft-api/internal/generation"
)

// ModelFactory builds Gemini-backed models bound to a single API key.
type ModelFactory struct {
	logger *slog.Logger
	config config.LLMConfig
}

// Ensure ModelFactory implements generation.ModelFactory
var _ generation.ModelFactory = (*ModelFactory)(nil)

// NewModelFactory creates a factory for the configured Gemini model.
func NewModelFactory(logger *slog.Logger, cfg config.LLMConfig) (*ModelFactory, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if strings.TrimSpace(cfg.ModelName) == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	return &ModelFactory{
		logger: logger.With(slog.String("component", "gemini")),
		config: cfg,
	}, nil
}

// ForCredential builds a client that authenticates with apiKey.
func (f *ModelFactory) ForCredential(ctx context.Context, apiKey string) (generation.Model, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", generation.ErrInvalidInput)
	}

	// Backend is always set explicitly so that GOOGLE_GENAI_USE_VERTEXAI in
	// the environment cannot redirect calls.
	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: f.config.BaseURL,
		},
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &model{
		client:          client,
		name:            f.config.ModelName,
		temperature:     float32(f.config.Temperature),
		maxOutputTokens: int32(f.config.MaxOutputTokens),
		logger:          f.logger,
	}, nil
}

// model performs single GenerateContent calls for one credential.
type model struct {
	client          *genai.Client
	name            string
	temperature     float32
	maxOutputTokens int32
	logger          *slog.Logger
}

// Generate implements generation.Model.
func (m *model) Generate(ctx context.Context, call generation.Call) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(m.temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   resultSchema(call.ResultField),
	}
	if m.maxOutputTokens > 0 {
		genConfig.MaxOutputTokens = m.maxOutputTokens
	}
	if call.SystemInstruction != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(call.SystemInstruction, genai.RoleUser)
	}

	m.logger.DebugContext(ctx, "sending Gemini request",
		slog.String("model", m.name),
		slog.String("operation", string(call.Operation)),
		slog.Int("prompt_length", len(call.Prompt)))

	resp, err := m.client.Models.GenerateContent(ctx, m.name, genai.Text(call.Prompt), genConfig)
	if err != nil {
		return "", mapError(err)
	}

	return extractResult(resp, call.ResultField)
}

// resultSchema describes a JSON object with one required string field.
func resultSchema(field string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			field: {Type: genai.TypeString},
		},
		Required: []string{field},
	}
}

// mapError converts SDK errors into *generation.RemoteError. Errors that did
// not come from the API (transport failures, context errors) pass through.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &generation.RemoteError{
			StatusCode: apiErr.Code,
			Status:     apiErr.Status,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &generation.RemoteError{
			StatusCode: apiErrPtr.Code,
			Status:     apiErrPtr.Status,
			Message:    apiErrPtr.Message,
			Err:        err,
		}
	}
	return err
}

// extractResult pulls the result field out of the model's JSON answer. A
// missing candidate or blank field yields "" so the caller reports an empty
// result.
func extractResult(resp *genai.GenerateContentResponse, field string) (string, error) {
	if resp == nil {
		return "", nil
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist:
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}

	raw := stripCodeFence(text.String())
	if raw == "" {
		return "", nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrMalformedResult, err)
	}

	value, ok := payload[field]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, not a string", generation.ErrMalformedResult, field, value)
	}
	return s, nil
}

// stripCodeFence removes a surrounding ```json fence, which some models add
// even when asked for raw JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
