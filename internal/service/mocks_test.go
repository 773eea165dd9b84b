package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/postcraft-api/internal/content"
	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/generation"
	"github.com/phrazzld/postcraft-api/internal/store"
)

// MockGenerator mocks the Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Summarize(
	ctx context.Context,
	content string,
	creds generation.Credentials,
) (*generation.SummarizeResult, error) {
	args := m.Called(ctx, content, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generation.SummarizeResult), args.Error(1)
}

func (m *MockGenerator) GeneratePost(
	ctx context.Context,
	summary string,
	platform generation.Platform,
	creds generation.Credentials,
) (*generation.GeneratePostResult, error) {
	args := m.Called(ctx, summary, platform, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generation.GeneratePostResult), args.Error(1)
}

func (m *MockGenerator) TunePost(
	ctx context.Context,
	postContent string,
	platform generation.Platform,
	instruction string,
	persona string,
	creds generation.Credentials,
) (*generation.TunePostResult, error) {
	args := m.Called(ctx, postContent, platform, instruction, persona, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generation.TunePostResult), args.Error(1)
}

// MockProfileStore mocks store.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileStore) Upsert(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return m
}

// MockUsageStore mocks store.UsageStore
type MockUsageStore struct {
	mock.Mock
}

func (m *MockUsageStore) Get(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (*domain.UsageQuota, error) {
	args := m.Called(ctx, userID, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageQuota), args.Error(1)
}

func (m *MockUsageStore) Consume(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (*domain.UsageQuota, error) {
	args := m.Called(ctx, userID, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageQuota), args.Error(1)
}

func (m *MockUsageStore) Refund(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return m.Called(ctx, userID, now).Error(0)
}

func (m *MockUsageStore) WithTx(tx *sql.Tx) store.UsageStore {
	return m
}

// MockDraftStore mocks store.DraftStore
type MockDraftStore struct {
	mock.Mock
}

func (m *MockDraftStore) Create(ctx context.Context, draft *domain.PostDraft) error {
	return m.Called(ctx, draft).Error(0)
}

func (m *MockDraftStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PostDraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostDraft), args.Error(1)
}

func (m *MockDraftStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PostDraft, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PostDraft), args.Error(1)
}

func (m *MockDraftStore) WithTx(tx *sql.Tx) store.DraftStore {
	return m
}

// MockGenerationLogStore mocks store.GenerationLogStore
type MockGenerationLogStore struct {
	mock.Mock
}

func (m *MockGenerationLogStore) Create(ctx context.Context, entry *domain.GenerationLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockGenerationLogStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.GenerationLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GenerationLog), args.Error(1)
}

// MockUserStore mocks store.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// stubSource returns a fixed document for every URL.
type stubSource struct {
	doc content.Document
}

func (s stubSource) Fetch(_ context.Context, rawURL string) content.Document {
	d := s.doc
	d.URL = rawURL
	return d
}

// countingSource records how often it is asked to fetch.
type countingSource struct {
	calls int
}

func (s *countingSource) Fetch(_ context.Context, rawURL string) content.Document {
	s.calls++
	return content.Document{URL: rawURL, Body: "fetched"}
}

// stubKeys opens every sealed key to the same plaintext.
type stubKeys struct {
	key string
	err error
}

func (k stubKeys) Open([]byte) (string, error) {
	return k.key, k.err
}
