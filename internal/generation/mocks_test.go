package generation_test

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/postcraft-api/internal/generation"
)

// MockModel is a generation.Model whose behavior is supplied per test.
type MockModel struct {
	GenerateFn func(ctx context.Context, call generation.Call) (string, error)

	mu    sync.Mutex
	calls []generation.Call
}

// Generate records the call and delegates to GenerateFn.
func (m *MockModel) Generate(ctx context.Context, call generation.Call) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
	return m.GenerateFn(ctx, call)
}

// Calls returns the calls made so far.
func (m *MockModel) Calls() []generation.Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Call(nil), m.calls...)
}

// response is one scripted model reply.
type response struct {
	text string
	err  error
}

// scriptedModel returns the given responses in order and repeats the last one
// once the script is exhausted.
func scriptedModel(responses ...response) *MockModel {
	var mu sync.Mutex
	i := 0
	return &MockModel{
		GenerateFn: func(ctx context.Context, call generation.Call) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			r := responses[i]
			if i < len(responses)-1 {
				i++
			}
			return r.text, r.err
		},
	}
}

// MockModelFactory hands out a fixed model and records requested keys.
type MockModelFactory struct {
	Model         generation.Model
	Err           error
	RequestedKeys []string
}

// ForCredential implements generation.ModelFactory.
func (f *MockModelFactory) ForCredential(ctx context.Context, apiKey string) (generation.Model, error) {
	f.RequestedKeys = append(f.RequestedKeys, apiKey)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Model, nil
}

// recordingSleeper records requested delays without waiting.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
	// err, when set, is returned instead of sleeping.
	err error
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// recordingObserver captures observer events.
type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	retries  []time.Duration
	finished []int
	failures []generation.Classification
}

func (o *recordingObserver) AttemptFinished(op generation.Operation, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) RetryScheduled(op generation.Operation, class generation.Classification, delay time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries = append(o.retries, delay)
}

func (o *recordingObserver) CallFinished(
	op generation.Operation,
	attempts int,
	duration time.Duration,
	err *generation.TerminalError,
) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, attempts)
	if err != nil {
		o.failures = append(o.failures, err.Classification)
	}
}
