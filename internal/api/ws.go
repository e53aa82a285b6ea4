package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codecollab/internal/models"
	"codecollab/internal/utils"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsClient serializes frame writes to one connection. Notifier callbacks
// fire on the editor's goroutine while the read loop runs on this one.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
	hook func(models.WSFrame)
}

func newWSClient(conn *websocket.Conn) *wsClient { return &wsClient{conn: conn} }

// setSendHook replaces the default WebSocket sender (used in tests).
func (c *wsClient) setSendHook(fn func(models.WSFrame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

func (c *wsClient) send(frame models.WSFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteJSON(frame)
}

// RoomWS is the live view of a room: the connection is subscribed to the
// room's code updates for its lifetime, and inbound "code" frames are
// applied as edits. Frames produced by this connection's own user are not
// echoed back (consumer-side filtering; the notifier delivers to everyone).
func (h *Handlers) RoomWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")

	claims, err := utils.VerifyTokenString(r.URL.Query().Get("token"), h.jwtSecret)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	userID, err := utils.GetUserIDFromClaims(claims)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := newWSClient(conn)
	unsubscribe := h.svc.Subscribe(roomID, func(code, editorID string) {
		if editorID != "" && editorID == userID {
			return
		}
		client.send(models.WSFrame{Type: "code", Data: models.CodeUpdate{Code: code, UserID: editorID}})
	})
	defer unsubscribe()

	// Snapshot so a late joiner starts from the current buffer.
	if rm, ok := h.svc.GetRoom(r.Context(), roomID); ok {
		client.send(models.WSFrame{Type: "code", Data: models.CodeUpdate{Code: rm.Code}})
	} else {
		client.send(models.WSFrame{Type: "code", Data: models.CodeUpdate{}})
	}

	h.log.Info("ws subscriber attached", zap.String("roomId", roomID), zap.String("userId", userID))

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case "code":
			var update models.CodeUpdate
			marshal(frame.Data, &update)
			_ = h.svc.UpdateCode(r.Context(), roomID, update.Code)

		default:
			client.send(errFrame("unknown_type"))
		}
	}
}

func marshal(data interface{}, out interface{}) {
	b, _ := json.Marshal(data)
	_ = json.Unmarshal(b, out)
}

func errFrame(msg string) models.WSFrame {
	return models.WSFrame{Type: "error", Data: msg}
}
