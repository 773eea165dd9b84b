package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/service/auth"
	"github.com/phrazzld/postcraft-api/internal/store"
)

// Session is an issued access token.
type Session struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// UserService registers and authenticates users.
type UserService interface {
	// Register creates a user with an empty profile and signs them in.
	// Returns store.ErrEmailExists if the email is taken.
	Register(ctx context.Context, email, password string) (*Session, error)

	// Login checks the password and issues a token. Returns
	// ErrInvalidCredentials for an unknown email or a wrong password.
	Login(ctx context.Context, email, password string) (*Session, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore    store.UserStore
	profileStore store.ProfileStore
	hasher       auth.PasswordHasher
	tokens       auth.JWTService
	db           *sql.DB
	logger       *slog.Logger
}

// Ensure UserServiceImpl implements UserService interface
var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	profileStore store.ProfileStore,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	db *sql.DB,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if userStore == nil || profileStore == nil {
		return nil, errors.New("user and profile stores cannot be nil")
	}
	if hasher == nil || tokens == nil {
		return nil, errors.New("password hasher and token service cannot be nil")
	}
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &UserServiceImpl{
		userStore:    userStore,
		profileStore: profileStore,
		hasher:       hasher,
		tokens:       tokens,
		db:           db,
		logger:       logger.With("component", "user_service"),
	}, nil
}

// Register creates the user and their empty profile in one transaction.
func (s *UserServiceImpl) Register(ctx context.Context, email, password string) (*Session, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		s.logger.Debug("rejected registration", "error", err)
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.userStore.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.profileStore.WithTx(tx).Upsert(ctx, domain.NewProfile(user.ID))
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to register with existing email")
		} else {
			s.logger.Error("failed to save user to database", "error", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.issue(ctx, user.ID)
}

// Login verifies the credentials and issues a token.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to retrieve user by email", "error", err)
		return nil, fmt.Errorf("failed to retrieve user by email: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user.ID)
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *UserServiceImpl) issue(ctx context.Context, userID uuid.UUID) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(ctx, userID)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}
