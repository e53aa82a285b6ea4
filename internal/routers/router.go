package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codecollab/internal/api"
	"codecollab/internal/session"
)

func New(log *zap.Logger, svc *session.Service, jwtSecret string) http.Handler {
	h := api.NewHandlers(log, svc, jwtSecret)
	r := chi.NewRouter()

	r.Get("/api/v1/healthz", h.Health)

	r.Post("/api/v1/auth/login", h.Login)
	r.Post("/api/v1/auth/register", h.Register)
	r.Post("/api/v1/auth/logout", h.Logout)
	r.Get("/api/v1/auth/me", h.Me)

	r.Post("/api/v1/rooms", h.CreateRoom)
	r.Get("/api/v1/rooms/{id}", h.GetRoom)
	r.Post("/api/v1/rooms/{id}/join", h.JoinRoom)
	r.Post("/api/v1/rooms/{id}/leave", h.LeaveRoom)
	r.Put("/api/v1/rooms/{id}/code", h.UpdateCode)
	r.Put("/api/v1/rooms/{id}/language", h.UpdateLanguage)

	r.Get("/api/v1/languages", h.ListLanguages)
	r.Post("/api/v1/run", h.RunOnce)

	r.Get("/ws/rooms/{id}", h.RoomWS)

	return r
}
