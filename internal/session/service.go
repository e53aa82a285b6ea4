// Package session exposes the single entry point consumers call. The
// service composes the identity store, room store, notifier, and runner;
// it is constructed once at startup and passed by handle, never reached
// through package globals.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"codecollab/internal/exec"
	"codecollab/internal/identity"
	"codecollab/internal/models"
	"codecollab/internal/notify"
	"codecollab/internal/room"
)

// Round-trip delays of the backend this service stands in for. UpdateCode
// deliberately has none so edits propagate immediately.
const (
	loginDelay    = 800 * time.Millisecond
	registerDelay = 800 * time.Millisecond
	logoutDelay   = 300 * time.Millisecond
	createDelay   = 500 * time.Millisecond
	joinDelay     = 400 * time.Millisecond
	leaveDelay    = 200 * time.Millisecond
	getDelay      = 200 * time.Millisecond
	languageDelay = 100 * time.Millisecond
)

type Service struct {
	log             *zap.Logger
	identity        *identity.Store
	rooms           *room.Store
	notifier        *notify.Notifier
	runner          *exec.Runner
	simulateLatency bool
}

type Options struct {
	Log             *zap.Logger
	Identity        *identity.Store
	Rooms           *room.Store
	Notifier        *notify.Notifier
	Runner          *exec.Runner
	SimulateLatency bool
}

func New(opts Options) *Service {
	return &Service{
		log:             opts.Log,
		identity:        opts.Identity,
		rooms:           opts.Rooms,
		notifier:        opts.Notifier,
		runner:          opts.Runner,
		simulateLatency: opts.SimulateLatency,
	}
}

/*** Identity ***/

func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	s.pause(ctx, loginDelay)
	return s.identity.Login(ctx, email, password)
}

func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, error) {
	s.pause(ctx, registerDelay)
	return s.identity.Register(ctx, name, email, password)
}

func (s *Service) Logout(ctx context.Context) error {
	s.pause(ctx, logoutDelay)
	return s.identity.Logout(ctx)
}

func (s *Service) CurrentUser(ctx context.Context) (models.User, bool) {
	return s.identity.CurrentUser(ctx)
}

/*** Rooms ***/

func (s *Service) CreateRoom(ctx context.Context) (models.Room, error) {
	s.pause(ctx, createDelay)
	return s.rooms.Create(ctx)
}

func (s *Service) JoinRoom(ctx context.Context, roomID string) (models.Room, error) {
	s.pause(ctx, joinDelay)
	return s.rooms.Join(ctx, roomID)
}

func (s *Service) LeaveRoom(ctx context.Context, roomID string) error {
	s.pause(ctx, leaveDelay)
	return s.rooms.Leave(ctx, roomID)
}

func (s *Service) GetRoom(ctx context.Context, roomID string) (models.Room, bool) {
	s.pause(ctx, getDelay)
	return s.rooms.Get(ctx, roomID)
}

func (s *Service) UpdateCode(ctx context.Context, roomID, code string) error {
	return s.rooms.UpdateCode(ctx, roomID, code)
}

func (s *Service) UpdateLanguage(ctx context.Context, roomID string, lang models.Language) error {
	s.pause(ctx, languageDelay)
	return s.rooms.UpdateLanguage(ctx, roomID, lang)
}

/*** Execution ***/

func (s *Service) Execute(ctx context.Context, code string, lang models.Language) models.ExecutionResult {
	return s.runner.Execute(ctx, code, lang)
}

/*** Notifications ***/

// Subscribe registers a live-update callback for a room and returns the
// unsubscribe capability. The callback sees every edit, including the
// subscriber's own; consumers filter by user id.
func (s *Service) Subscribe(roomID string, fn notify.Callback) func() {
	return s.notifier.Subscribe(roomID, fn)
}

/*** Languages ***/

func (s *Service) Languages() []models.LanguageSpec {
	return models.SupportedLanguages()
}

func (s *Service) pause(ctx context.Context, d time.Duration) {
	if !s.simulateLatency {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
