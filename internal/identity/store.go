package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codecollab/internal/models"
)

// ErrInvalidCredentials is returned when login/register input fails the
// demo-grade shape checks. There is no real authentication behind it.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Store owns the process-wide current session. Every login mints a fresh
// user id, even for an email seen before; identities are not keyed by
// email. That matches the demo backend this service stands in for.
type Store struct {
	log      *zap.Logger
	sessions SessionStore

	mu         sync.Mutex
	current    *models.User
	rehydrated bool
}

func NewStore(log *zap.Logger, sessions SessionStore) *Store {
	return &Store{log: log, sessions: sessions}
}

func validateCredentials(email, password string) error {
	if !strings.Contains(email, "@") || len(password) < 6 {
		return ErrInvalidCredentials
	}
	return nil
}

// Login validates the input, mints a new user, and makes it the current
// session. The display name is the email's local part.
func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return models.User{}, err
	}
	name := email[:strings.Index(email, "@")]
	return s.establish(ctx, name, email)
}

// Register behaves like Login but keeps the caller-provided display name.
func (s *Store) Register(ctx context.Context, name, email, password string) (models.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return models.User{}, err
	}
	return s.establish(ctx, name, email)
}

func (s *Store) establish(ctx context.Context, name, email string) (models.User, error) {
	user := models.User{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  email,
		Avatar: models.AvatarURLPrefix + email,
	}

	s.mu.Lock()
	u := user
	s.current = &u
	s.rehydrated = true
	s.mu.Unlock()

	if err := s.sessions.Save(ctx, user); err != nil {
		// The in-memory session is already established; a failed durable
		// write only costs reload survival.
		s.log.Warn("failed to persist session", zap.Error(err))
	}
	s.log.Info("session established", zap.String("userId", user.ID), zap.String("email", email))
	return user, nil
}

// Logout clears the in-memory session and the durable record.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.rehydrated = true
	s.mu.Unlock()

	if err := s.sessions.Clear(ctx); err != nil {
		s.log.Warn("failed to clear persisted session", zap.Error(err))
	}
	return nil
}

// CurrentUser returns the in-memory session if set, otherwise rehydrates
// from durable storage exactly once and caches the outcome either way.
func (s *Store) CurrentUser(ctx context.Context) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return *s.current, true
	}
	if s.rehydrated {
		return models.User{}, false
	}
	s.rehydrated = true

	user, ok, err := s.sessions.Load(ctx)
	if err != nil {
		s.log.Warn("failed to load persisted session", zap.Error(err))
		return models.User{}, false
	}
	if !ok {
		return models.User{}, false
	}
	u := user
	s.current = &u
	return user, true
}
