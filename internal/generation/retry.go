package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/looplab/fsm"
)

// Retry defaults.
const (
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 1000 * time.Millisecond
	DefaultBackoffMultiplier = 2.0
	DefaultMaxBackoff        = 30 * time.Second
)

// RetryConfig bounds the retry loop. MaxRetries is the total number of
// attempts, so the default of 3 means one initial call and two retries.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
	// Jitter is the randomization factor applied to each delay, between 0
	// and 1. Zero gives the exact 1s, 2s, 4s sequence.
	Jitter float64
	// AttemptTimeout bounds a single remote call. Zero means no bound beyond
	// the caller's context.
	AttemptTimeout time.Duration
}

// DefaultRetryConfig returns the standard retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
		MaxBackoff:        DefaultMaxBackoff,
	}
}

// Validate checks the retry configuration.
func (c RetryConfig) Validate() error {
	switch {
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: max retries must be at least 1", ErrInvalidConfig)
	case c.InitialBackoff < 0:
		return fmt.Errorf("%w: initial backoff cannot be negative", ErrInvalidConfig)
	case c.BackoffMultiplier < 1:
		return fmt.Errorf("%w: backoff multiplier must be at least 1", ErrInvalidConfig)
	case c.Jitter < 0 || c.Jitter >= 1:
		return fmt.Errorf("%w: jitter must be in [0, 1)", ErrInvalidConfig)
	case c.AttemptTimeout < 0:
		return fmt.Errorf("%w: attempt timeout cannot be negative", ErrInvalidConfig)
	}
	return nil
}

func (c RetryConfig) newBackOff() backoff.BackOff {
	maxInterval := c.MaxBackoff
	if maxInterval <= 0 {
		maxInterval = DefaultMaxBackoff
	}
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.InitialBackoff),
		backoff.WithMultiplier(c.BackoffMultiplier),
		backoff.WithRandomizationFactor(c.Jitter),
		backoff.WithMaxInterval(maxInterval),
		backoff.WithMaxElapsedTime(0),
	)
}

// Sleeper waits for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the wait was interrupted.
type Sleeper func(ctx context.Context, d time.Duration) error

// sleepContext is the production Sleeper.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Observer receives retry loop events. Implementations must be safe for
// concurrent use.
type Observer interface {
	// AttemptFinished is called after every remote call. outcome is "success"
	// or the failure classification.
	AttemptFinished(op Operation, outcome string)
	// RetryScheduled is called before each backoff sleep.
	RetryScheduled(op Operation, class Classification, delay time.Duration)
	// CallFinished is called once per request with the total attempts made.
	// err is nil on success.
	CallFinished(op Operation, attempts int, duration time.Duration, err *TerminalError)
}

type nopObserver struct{}

func (nopObserver) AttemptFinished(Operation, string) {}
func (nopObserver) RetryScheduled(Operation, Classification, time.Duration) {}
func (nopObserver) CallFinished(Operation, int, time.Duration, *TerminalError) {}

// Retry loop states and events.
const (
	stateAttempting = "attempting"
	stateWaiting    = "waiting_to_retry"
	stateSucceeded  = "succeeded"
	stateFailed     = "failed"

	eventSucceed = "succeed"
	eventFail    = "fail"
	eventBackoff = "backoff"
	eventRetry   = "retry"
)

func newRetryMachine(log *slog.Logger) *fsm.FSM {
	return fsm.NewFSM(
		stateAttempting,
		fsm.Events{
			{Name: eventSucceed, Src: []string{stateAttempting}, Dst: stateSucceeded},
			{Name: eventFail, Src: []string{stateAttempting, stateWaiting}, Dst: stateFailed},
			{Name: eventBackoff, Src: []string{stateAttempting}, Dst: stateWaiting},
			{Name: eventRetry, Src: []string{stateWaiting}, Dst: stateAttempting},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				log.DebugContext(ctx, "retry state changed",
					slog.String("event", e.Event),
					slog.String("from", e.Src),
					slog.String("to", e.Dst))
			},
		},
	)
}

// RetryState is the request-local bookkeeping of the retry loop.
type RetryState struct {
	// AttemptsMade counts retries already performed, starting at 0.
	AttemptsMade   int
	CurrentBackoff time.Duration
}

// attemptResult is what the retry loop hands to the normalizer.
type attemptResult struct {
	text     string
	attempts int
	failure  *Failure
}

// executor runs the attempt loop for one request. It is created per request
// and never shared.
type executor struct {
	config   RetryConfig
	sleep    Sleeper
	observer Observer
	logger   *slog.Logger
}

// run invokes the model until it succeeds, hits a terminal failure, or
// exhausts the attempt budget.
func (e *executor) run(ctx context.Context, model Model, call Call) attemptResult {
	machine := newRetryMachine(e.logger)
	bo := e.config.newBackOff()
	state := RetryState{CurrentBackoff: e.config.InitialBackoff}

	// Transitions use a context that cannot be cancelled; the machine must
	// always reach a final state even when the caller has gone away.
	fsmCtx := context.WithoutCancel(ctx)
	transition := func(event string) {
		if err := machine.Event(fsmCtx, event); err != nil {
			e.logger.ErrorContext(ctx, "invalid retry state transition",
				slog.String("event", event),
				slog.String("state", machine.Current()),
				slog.String("error", err.Error()))
		}
	}

	for {
		attempt := state.AttemptsMade + 1
		e.logger.InfoContext(ctx, "calling generation model",
			slog.String("operation", string(call.Operation)),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", e.config.MaxRetries))

		outcome := e.attempt(ctx, model, call)
		if outcome.Succeeded() {
			transition(eventSucceed)
			e.observer.AttemptFinished(call.Operation, "success")
			return attemptResult{text: outcome.Text, attempts: attempt}
		}

		failure := outcome.Failure
		failure.Classification = Classify(failure.Err)
		e.observer.AttemptFinished(call.Operation, failure.Classification.String())

		e.logger.WarnContext(ctx, "generation attempt failed",
			slog.String("operation", string(call.Operation)),
			slog.Int("attempt", attempt),
			slog.String("classification", failure.Classification.String()),
			slog.Int("status", failure.Status))

		if failure.Classification.Terminal() ||
			ctx.Err() != nil ||
			state.AttemptsMade >= e.config.MaxRetries-1 {
			if ctx.Err() != nil {
				failure.Err = errors.Join(failure.Err, ctx.Err())
			}
			transition(eventFail)
			return attemptResult{attempts: attempt, failure: failure}
		}

		transition(eventBackoff)
		state.CurrentBackoff = bo.NextBackOff()
		e.observer.RetryScheduled(call.Operation, failure.Classification, state.CurrentBackoff)
		e.logger.InfoContext(ctx, "retrying generation after backoff",
			slog.String("operation", string(call.Operation)),
			slog.Int("attempt", attempt),
			slog.Int64("delay_ms", state.CurrentBackoff.Milliseconds()))

		if err := e.sleep(ctx, state.CurrentBackoff); err != nil {
			failure.Err = errors.Join(failure.Err, err)
			transition(eventFail)
			return attemptResult{attempts: attempt, failure: failure}
		}

		state.AttemptsMade++
		transition(eventRetry)
	}
}

func (e *executor) attempt(ctx context.Context, model Model, call Call) AttemptOutcome {
	if e.config.AttemptTimeout <= 0 {
		return invoke(ctx, model, call)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, e.config.AttemptTimeout)
	defer cancel()
	return invoke(attemptCtx, model, call)
}
