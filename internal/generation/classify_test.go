package generation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/postcraft-api/internal/generation"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want generation.Classification
	}{
		{
			name: "bad key reported as 400",
			err: &generation.RemoteError{
				StatusCode: 400,
				Status:     "INVALID_ARGUMENT",
				Message:    "API key not valid. Please pass a valid API key.",
			},
			want: generation.InvalidCredential,
		},
		{
			name: "401 unauthenticated",
			err:  &generation.RemoteError{StatusCode: 401, Status: "UNAUTHENTICATED", Message: "request had invalid credentials"},
			want: generation.InvalidCredential,
		},
		{
			name: "403 permission denied",
			err:  &generation.RemoteError{StatusCode: 403, Status: "PERMISSION_DENIED", Message: "key suspended"},
			want: generation.InvalidCredential,
		},
		{
			name: "plain invalid api key message",
			err:  errors.New("Invalid API key provided"),
			want: generation.InvalidCredential,
		},
		{
			name: "503 unavailable",
			err:  &generation.RemoteError{StatusCode: 503, Status: "UNAVAILABLE", Message: "The model is overloaded."},
			want: generation.ServiceUnavailable,
		},
		{
			name: "500 internal",
			err:  &generation.RemoteError{StatusCode: 500, Status: "INTERNAL", Message: "An internal error has occurred."},
			want: generation.ServiceUnavailable,
		},
		{
			name: "context deadline",
			err:  fmt.Errorf("doing request: %w", context.DeadlineExceeded),
			want: generation.ServiceUnavailable,
		},
		{
			name: "service unavailable message",
			err:  errors.New("upstream: service unavailable"),
			want: generation.ServiceUnavailable,
		},
		{
			name: "internal error message",
			err:  errors.New("internal error while processing"),
			want: generation.ServiceUnavailable,
		},
		{
			name: "429 resource exhausted",
			err:  &generation.RemoteError{StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "Resource has been exhausted"},
			want: generation.RateLimited,
		},
		{
			name: "quota exceeded message",
			err:  errors.New("Quota exceeded for quota metric"),
			want: generation.RateLimited,
		},
		{
			name: "rate limit message",
			err:  errors.New("rate limit reached"),
			want: generation.RateLimited,
		},
		{
			name: "empty result sentinel",
			err:  fmt.Errorf("%w: nothing", generation.ErrEmptyResult),
			want: generation.EmptyResult,
		},
		{
			name: "malformed result",
			err:  fmt.Errorf("decode: %w", generation.ErrMalformedResult),
			want: generation.EmptyResult,
		},
		{
			name: "400 invalid argument",
			err:  &generation.RemoteError{StatusCode: 400, Status: "INVALID_ARGUMENT", Message: "contents is not specified"},
			want: generation.InvalidInput,
		},
		{
			name: "content blocked",
			err:  fmt.Errorf("%w: finish reason SAFETY", generation.ErrContentBlocked),
			want: generation.InvalidInput,
		},
		{
			name: "anything else",
			err:  errors.New("connection reset by peer"),
			want: generation.Unknown,
		},
		{
			name: "nil",
			err:  nil,
			want: generation.Unknown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := generation.Classify(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, generation.Classify(tt.err), "classification must be stable")
		})
	}
}

func TestClassificationTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, generation.InvalidCredential.Terminal())
	assert.True(t, generation.InvalidInput.Terminal())
	assert.False(t, generation.RateLimited.Terminal())
	assert.False(t, generation.ServiceUnavailable.Terminal())
	assert.False(t, generation.EmptyResult.Terminal())
	assert.False(t, generation.Unknown.Terminal())
}

func TestTerminalErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	cause := &generation.RemoteError{StatusCode: 503, Message: "overloaded"}
	err := error(&generation.TerminalError{
		Classification: generation.ServiceUnavailable,
		Operation:      generation.OperationSummarize,
		Message:        "Failed to summarize content",
		Attempts:       3,
		Cause:          cause,
	})

	assert.ErrorIs(t, err, generation.ErrServiceUnavailable)
	assert.NotErrorIs(t, err, generation.ErrRateLimited)

	var remote *generation.RemoteError
	assert.ErrorAs(t, err, &remote)
	assert.Equal(t, 503, remote.StatusCode)
	assert.Equal(t, generation.ServiceUnavailable, generation.Classify(err))
}

func TestTerminalErrorCategory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "internal", (&generation.TerminalError{Classification: generation.EmptyResult}).Category())
	assert.Equal(t, "internal", (&generation.TerminalError{Classification: generation.Unknown}).Category())
	assert.Equal(t, "rate_limited", (&generation.TerminalError{Classification: generation.RateLimited}).Category())
}
