package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"codecollab/internal/exec"
	"codecollab/internal/identity"
	"codecollab/internal/models"
	"codecollab/internal/notify"
	"codecollab/internal/room"
	"codecollab/internal/routers"
	"codecollab/internal/session"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop()
	ids := identity.NewStore(log, identity.NewMemorySessionStore())
	notifier := notify.New()
	rooms := room.NewStore(log, ids, notifier)
	runner := exec.NewRunner(log, false, time.Second)

	svc := session.New(session.Options{
		Log:      log,
		Identity: ids,
		Rooms:    rooms,
		Notifier: notifier,
		Runner:   runner,
	})

	server := httptest.NewServer(routers.New(log, svc, testSecret))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

type authPayload struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func loginAs(t *testing.T, server *httptest.Server, email string) authPayload {
	t.Helper()
	resp := postJSON(t, server.URL+"/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "abcdef",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[authPayload](t, resp)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/auth/login", map[string]string{
		"email":    "bob",
		"password": "12345",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginReturnsUserAndToken(t *testing.T) {
	server := newTestServer(t)

	auth := loginAs(t, server, "a@b.com")

	assert.Equal(t, "a@b.com", auth.User.Email)
	assert.Equal(t, "a", auth.User.Name)
	assert.NotEmpty(t, auth.User.ID)
	assert.NotEmpty(t, auth.Token)
}

func TestRegisterReturnsCreated(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/auth/register", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	auth := decode[authPayload](t, resp)
	assert.Equal(t, "Alice", auth.User.Name)
}

func TestMeReflectsSessionState(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/auth/me")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	auth := loginAs(t, server, "a@b.com")

	resp, err = http.Get(server.URL + "/api/v1/auth/me")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user := decode[models.User](t, resp)
	assert.Equal(t, auth.User.ID, user.ID)
}

func TestLogoutClearsSession(t *testing.T) {
	server := newTestServer(t)
	loginAs(t, server, "a@b.com")

	resp := postJSON(t, server.URL+"/api/v1/auth/logout", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err := http.Get(server.URL + "/api/v1/auth/me")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateRoomRequiresLogin(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/rooms", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoomLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	auth := loginAs(t, server, "a@b.com")

	resp := postJSON(t, server.URL+"/api/v1/rooms", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Room](t, resp)
	assert.Len(t, created.ID, 8)
	assert.Equal(t, models.StarterCode, created.Code)
	assert.Equal(t, []models.User{auth.User}, created.Participants)

	// Joining an arbitrary unseen id materializes a room.
	resp = postJSON(t, server.URL+"/api/v1/rooms/fresh-id/join", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	joined := decode[models.Room](t, resp)
	assert.Equal(t, "fresh-id", joined.ID)

	// Update code, read it back.
	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/v1/rooms/"+created.ID+"/code", bytes.NewReader([]byte(`{"code":"1+1"}`)))
	assert.NoError(t, err)
	putResp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	putResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, putResp.StatusCode)

	resp, err = http.Get(server.URL + "/api/v1/rooms/" + created.ID)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.Room](t, resp)
	assert.Equal(t, "1+1", got.Code)

	// Leave returns success even when repeated.
	resp = postJSON(t, server.URL+"/api/v1/rooms/"+created.ID+"/leave", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = postJSON(t, server.URL+"/api/v1/rooms/"+created.ID+"/leave", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestGetUnknownRoomReturns404(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/rooms/missing")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/run", map[string]string{
		"code":     "console.log('hi')",
		"language": "javascript",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[models.ExecutionResult](t, resp)
	assert.Equal(t, "hi", result.Output)
	assert.Empty(t, result.Error)

	resp = postJSON(t, server.URL+"/api/v1/run", map[string]string{
		"code":     "print('hi')",
		"language": "python",
	})
	result = decode[models.ExecutionResult](t, resp)
	assert.Contains(t, result.Output, "[Mock] Code execution for python is simulated.")
}

func TestListLanguages(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/languages")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	langs := decode[[]models.LanguageSpec](t, resp)
	assert.Len(t, langs, 8)
	assert.Equal(t, models.LangJavaScript, langs[0].ID)
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/healthz")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
