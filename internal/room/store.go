package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codecollab/internal/identity"
	"codecollab/internal/models"
	"codecollab/internal/notify"
)

// ErrUnauthenticated is returned when an operation requires a current user
// and none exists.
var ErrUnauthenticated = errors.New("user must be authenticated")

// Store owns the room map. All mutations are read-modify-write under one
// mutex; the last writer wins. Rooms are never deleted.
type Store struct {
	log      *zap.Logger
	identity *identity.Store
	notifier *notify.Notifier

	mu    sync.RWMutex
	rooms map[string]*models.Room

	// pubMu serializes code mutation with its notification so deliveries
	// for a room arrive in UpdateCode call order.
	pubMu sync.Mutex
}

func NewStore(log *zap.Logger, ids *identity.Store, notifier *notify.Notifier) *Store {
	return &Store{
		log:      log,
		identity: ids,
		notifier: notifier,
		rooms:    make(map[string]*models.Room),
	}
}

func newRoom(id, creatorID string) *models.Room {
	return &models.Room{
		ID:           id,
		Code:         models.StarterCode,
		Language:     models.DefaultLanguage,
		Participants: []models.User{},
		CreatedAt:    time.Now(),
		CreatedBy:    creatorID,
	}
}

// snapshot copies a room so callers never alias store-owned state.
func snapshot(r *models.Room) models.Room {
	out := *r
	out.Participants = make([]models.User, len(r.Participants))
	copy(out.Participants, r.Participants)
	return out
}

// Create allocates a room with a short shareable id, seeded with the
// starter template, owned and joined by the current user.
func (s *Store) Create(ctx context.Context) (models.Room, error) {
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return models.Room{}, ErrUnauthenticated
	}

	r := newRoom(uuid.NewString()[:8], user.ID)
	r.Participants = append(r.Participants, user)

	s.mu.Lock()
	s.rooms[r.ID] = r
	out := snapshot(r)
	s.mu.Unlock()

	s.log.Info("room created", zap.String("roomId", r.ID), zap.String("userId", user.ID))
	return out, nil
}

// Join adds the current user to the room's participants if absent. An
// unknown id lazily materializes a room with default content attributed to
// the joiner; anyone can create by joining an arbitrary id.
func (s *Store) Join(ctx context.Context, roomID string) (models.Room, error) {
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return models.Room{}, ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[roomID]
	if !exists {
		r = newRoom(roomID, user.ID)
		s.rooms[roomID] = r
		s.log.Info("room materialized on join", zap.String("roomId", roomID))
	}

	present := false
	for _, p := range r.Participants {
		if p.ID == user.ID {
			present = true
			break
		}
	}
	if !present {
		r.Participants = append(r.Participants, user)
	}
	return snapshot(r), nil
}

// Leave removes the current user from the room's participants. Unknown
// room, absent user, or no session are all silent no-ops. The room itself
// is never deleted.
func (s *Store) Leave(ctx context.Context, roomID string) error {
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.rooms[roomID]
	if !exists {
		return nil
	}
	kept := r.Participants[:0]
	for _, p := range r.Participants {
		if p.ID != user.ID {
			kept = append(kept, p)
		}
	}
	r.Participants = kept
	return nil
}

// UpdateCode replaces the room's code and synchronously notifies every
// subscriber, tagged with the editing user's id. Unknown room is a silent
// no-op.
func (s *Store) UpdateCode(ctx context.Context, roomID, code string) error {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	r, exists := s.rooms[roomID]
	if !exists {
		s.mu.Unlock()
		return nil
	}
	r.Code = code
	s.mu.Unlock()

	var editorID string
	if user, ok := s.identity.CurrentUser(ctx); ok {
		editorID = user.ID
	}
	s.notifier.Publish(roomID, code, editorID)
	return nil
}

// UpdateLanguage replaces the room's language. Values outside the
// supported set are accepted silently; unknown room is a silent no-op.
func (s *Store) UpdateLanguage(_ context.Context, roomID string, lang models.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, exists := s.rooms[roomID]; exists {
		r.Language = lang
	}
	return nil
}

// Get returns a copy of the room, or false if it does not exist.
func (s *Store) Get(_ context.Context, roomID string) (models.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.rooms[roomID]
	if !exists {
		return models.Room{}, false
	}
	return snapshot(r), true
}

// Stats reports the current number of rooms and total participant entries.
func (s *Store) Stats() (rooms, participants int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rooms {
		participants += len(r.Participants)
	}
	return len(s.rooms), participants
}
