package generation

import (
	"context"
	"fmt"
	"strings"
)

// Operation identifies one of the three generation operations.
type Operation string

// Supported operations.
const (
	OperationSummarize Operation = "summarize"
	OperationGenerate  Operation = "generate"
	OperationTune      Operation = "tune"
)

// Label returns a human-readable noun for the operation.
func (o Operation) Label() string {
	switch o {
	case OperationSummarize:
		return "summarization"
	case OperationGenerate:
		return "post generation"
	case OperationTune:
		return "post tuning"
	default:
		return string(o)
	}
}

// Platform is a social media platform a post is written for.
type Platform string

// Supported platforms.
const (
	PlatformLinkedIn Platform = "linkedin"
	PlatformTwitter  Platform = "twitter"
	PlatformYouTube  Platform = "youtube"
)

type platformProfile struct {
	name      string
	maxLength int
	guidance  string
}

var platforms = map[Platform]platformProfile{
	PlatformLinkedIn: {
		name:      "LinkedIn",
		maxLength: 3000,
		guidance: "Write a professional post with a strong opening line, short paragraphs, " +
			"one clear takeaway and at most three relevant hashtags at the end.",
	},
	PlatformTwitter: {
		name:      "Twitter/X",
		maxLength: 280,
		guidance: "Write a single punchy tweet. Stay under 280 characters including hashtags. " +
			"Use at most two hashtags and no thread numbering.",
	},
	PlatformYouTube: {
		name:      "YouTube",
		maxLength: 5000,
		guidance: "Write a video description: a two sentence hook, a short bullet list of " +
			"what the viewer will learn and a call to action to like and subscribe.",
	},
}

// ParsePlatform validates a platform identifier. Matching is case-insensitive
// and "x" is accepted as an alias for Twitter.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p == "x" {
		p = PlatformTwitter
	}
	if _, ok := platforms[p]; !ok {
		return "", fmt.Errorf("%w: unsupported platform %q", ErrInvalidInput, s)
	}
	return p, nil
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	_, ok := platforms[p]
	return ok
}

// DisplayName returns the platform's name as shown to users.
func (p Platform) DisplayName() string {
	if prof, ok := platforms[p]; ok {
		return prof.name
	}
	return string(p)
}

// MaxLength is the platform's post length limit in characters.
func (p Platform) MaxLength() int {
	return platforms[p].maxLength
}

// Guidance is the platform-specific writing guidance embedded in prompts.
func (p Platform) Guidance() string {
	return platforms[p].guidance
}

// Credentials carries the caller's LLM provider credential.
type Credentials struct {
	APIKey string
}

// Request is the immutable input of a single generation call. Which payload
// fields are used depends on Operation.
type Request struct {
	Operation   Operation
	APIKey      string
	Platform    Platform
	Content     string
	Summary     string
	PostContent string
	Instruction string
	Persona     string
}

// validate checks the operation-specific payload. It does not look at the
// credential; that is the guard's job.
func (r Request) validate() error {
	switch r.Operation {
	case OperationSummarize:
		if strings.TrimSpace(r.Content) == "" {
			return fmt.Errorf("%w: content is required", ErrInvalidInput)
		}
	case OperationGenerate:
		if strings.TrimSpace(r.Summary) == "" {
			return fmt.Errorf("%w: summary is required", ErrInvalidInput)
		}
		if !r.Platform.Valid() {
			return fmt.Errorf("%w: unsupported platform %q", ErrInvalidInput, r.Platform)
		}
	case OperationTune:
		if strings.TrimSpace(r.PostContent) == "" {
			return fmt.Errorf("%w: post content is required", ErrInvalidInput)
		}
		if strings.TrimSpace(r.Instruction) == "" {
			return fmt.Errorf("%w: instruction is required", ErrInvalidInput)
		}
		if !r.Platform.Valid() {
			return fmt.Errorf("%w: unsupported platform %q", ErrInvalidInput, r.Platform)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidInput, r.Operation)
	}
	return nil
}

// Call is a single rendered request to the remote model.
type Call struct {
	Operation         Operation
	SystemInstruction string
	Prompt            string
	// ResultField is the name of the single string field the model must
	// return in its structured JSON output.
	ResultField string
}

// Model performs one remote generation call. Implementations must not retry.
type Model interface {
	Generate(ctx context.Context, call Call) (string, error)
}

// ModelFactory builds a Model bound to one caller's credential. A new Model is
// built for every request so that no client state is shared between callers.
type ModelFactory interface {
	ForCredential(ctx context.Context, apiKey string) (Model, error)
}
