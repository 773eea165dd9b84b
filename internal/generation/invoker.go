package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Failure describes one failed attempt.
type Failure struct {
	Classification Classification
	Message        string
	// Status is the HTTP status reported by the provider, or 0.
	Status int
	Err    error
}

// AttemptOutcome is the result of exactly one remote call. Failure is nil on
// success.
type AttemptOutcome struct {
	Text    string
	Failure *Failure
}

// Succeeded reports whether the attempt produced usable text.
func (o AttemptOutcome) Succeeded() bool {
	return o.Failure == nil
}

// invoke performs a single remote call. It never sleeps or retries. Errors are
// reported as Unknown here and classified by the retry loop.
func invoke(ctx context.Context, model Model, call Call) AttemptOutcome {
	text, err := model.Generate(ctx, call)
	if err != nil {
		failure := &Failure{
			Classification: Unknown,
			Message:        err.Error(),
			Err:            err,
		}
		var remote *RemoteError
		if errors.As(err, &remote) {
			failure.Status = remote.StatusCode
		}
		return AttemptOutcome{Failure: failure}
	}

	if strings.TrimSpace(text) == "" {
		msg := fmt.Sprintf("%s returned an empty result", call.Operation.Label())
		return AttemptOutcome{Failure: &Failure{
			Classification: EmptyResult,
			Message:        msg,
			Err:            fmt.Errorf("%w: %s", ErrEmptyResult, msg),
		}}
	}

	return AttemptOutcome{Text: text}
}
