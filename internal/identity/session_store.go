package identity

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"codecollab/internal/models"
)

// SessionKey is the well-known key holding the serialized current user.
const SessionKey = "codecollab:current_user"

// SessionStore persists the single current-session record so a restart
// does not log the user out. Loss of the record silently degrades to
// logged-out.
type SessionStore interface {
	Save(ctx context.Context, user models.User) error
	Load(ctx context.Context) (models.User, bool, error)
	Clear(ctx context.Context) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, SessionKey, data, 0).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context) (models.User, bool, error) {
	data, err := s.client.Get(ctx, SessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		// A corrupt record is treated as absent.
		return models.User{}, false, nil
	}
	return user, true, nil
}

func (s *RedisSessionStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, SessionKey).Err()
}

// MemorySessionStore backs tests and redis-less deployments.
type MemorySessionStore struct {
	mu   sync.Mutex
	user *models.User
}

func NewMemorySessionStore() *MemorySessionStore { return &MemorySessionStore{} }

func (s *MemorySessionStore) Save(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	return nil
}

func (s *MemorySessionStore) Load(_ context.Context) (models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false, nil
	}
	return *s.user, true, nil
}

func (s *MemorySessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}
