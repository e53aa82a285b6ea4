package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"codecollab/internal/exec"
	"codecollab/internal/identity"
	"codecollab/internal/models"
	"codecollab/internal/notify"
	"codecollab/internal/room"
)

func newTestService() *Service {
	log := zap.NewNop()
	ids := identity.NewStore(log, identity.NewMemorySessionStore())
	notifier := notify.New()
	rooms := room.NewStore(log, ids, notifier)
	runner := exec.NewRunner(log, false, time.Second)

	return New(Options{
		Log:      log,
		Identity: ids,
		Rooms:    rooms,
		Notifier: notifier,
		Runner:   runner,
	})
}

func TestEndToEndCollaborationFlow(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx)
	assert.ErrorIs(t, err, room.ErrUnauthenticated)

	user, err := svc.Login(ctx, "a@b.com", "abcdef")
	assert.NoError(t, err)

	current, ok := svc.CurrentUser(ctx)
	assert.True(t, ok)
	assert.Equal(t, user.ID, current.ID)

	rm, err := svc.CreateRoom(ctx)
	assert.NoError(t, err)
	assert.Equal(t, models.StarterCode, rm.Code)

	type delivery struct {
		code   string
		userID string
	}
	var got []delivery
	unsubscribe := svc.Subscribe(rm.ID, func(code, userID string) {
		got = append(got, delivery{code, userID})
	})

	assert.NoError(t, svc.UpdateCode(ctx, rm.ID, "1+1"))
	assert.Len(t, got, 1)
	assert.Equal(t, delivery{"1+1", user.ID}, got[0])

	unsubscribe()
	assert.NoError(t, svc.UpdateCode(ctx, rm.ID, "2+2"))
	assert.Len(t, got, 1)

	stored, ok := svc.GetRoom(ctx, rm.ID)
	assert.True(t, ok)
	assert.Equal(t, "2+2", stored.Code)

	assert.NoError(t, svc.LeaveRoom(ctx, rm.ID))
	stored, ok = svc.GetRoom(ctx, rm.ID)
	assert.True(t, ok)
	assert.Empty(t, stored.Participants)
}

func TestServiceExecute(t *testing.T) {
	svc := newTestService()

	result := svc.Execute(context.Background(), "console.log('hi')", models.LangJavaScript)
	assert.Equal(t, "hi", result.Output)
	assert.Empty(t, result.Error)

	result = svc.Execute(context.Background(), "whatever", models.LangPython)
	assert.Contains(t, result.Output, "[Mock]")
}

func TestServiceLanguages(t *testing.T) {
	svc := newTestService()

	langs := svc.Languages()
	assert.Len(t, langs, 8)
	assert.Equal(t, models.LangJavaScript, langs[0].ID)
	assert.Equal(t, "js", langs[0].Extension)
}

func TestServiceLatencyDisabledByDefaultInTests(t *testing.T) {
	svc := newTestService()

	start := time.Now()
	_, err := svc.Login(context.Background(), "a@b.com", "abcdef")
	assert.NoError(t, err)
	assert.Less(t, time.Since(start), loginDelay)
}
