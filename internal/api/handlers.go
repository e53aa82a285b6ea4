package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codecollab/internal/identity"
	"codecollab/internal/metrics"
	"codecollab/internal/models"
	"codecollab/internal/room"
	"codecollab/internal/session"
	"codecollab/internal/utils"
)

// Handlers adapts the session service to HTTP.
type Handlers struct {
	log       *zap.Logger
	svc       *session.Service
	jwtSecret string
}

func NewHandlers(log *zap.Logger, svc *session.Service, jwtSecret string) *Handlers {
	return &Handlers{log: log, svc: svc, jwtSecret: jwtSecret}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

/*** Auth ***/

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			utils.JSONError(w, http.StatusUnauthorized, "invalid registration data")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	h.respondWithToken(w, http.StatusCreated, user)
}

func (h *Handlers) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := utils.SignToken(user.ID, h.jwtSecret)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	utils.JSON(w, status, authResponse{User: user, Token: token})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.svc.CurrentUser(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

/*** Rooms ***/

func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := h.svc.CreateRoom(r.Context())
	if err != nil {
		h.roomError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, rm)
}

func (h *Handlers) JoinRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := h.svc.JoinRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.roomError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, rm)
}

func (h *Handlers) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	// Unknown rooms and absent users are silent no-ops.
	_ = h.svc.LeaveRoom(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := h.svc.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "room not found")
		return
	}
	utils.JSON(w, http.StatusOK, rm)
}

type updateCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handlers) UpdateCode(w http.ResponseWriter, r *http.Request) {
	var req updateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	_ = h.svc.UpdateCode(r.Context(), chi.URLParam(r, "id"), req.Code)
	w.WriteHeader(http.StatusNoContent)
}

type updateLanguageRequest struct {
	Language models.Language `json:"language"`
}

func (h *Handlers) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var req updateLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	_ = h.svc.UpdateLanguage(r.Context(), chi.URLParam(r, "id"), req.Language)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) roomError(w http.ResponseWriter, err error) {
	if errors.Is(err, room.ErrUnauthenticated) {
		utils.JSONError(w, http.StatusUnauthorized, "user must be authenticated")
		return
	}
	utils.JSONError(w, http.StatusInternalServerError, "room operation failed")
}

/*** Execution ***/

type runRequest struct {
	Code     string          `json:"code"`
	Language models.Language `json:"language"`
}

func (h *Handlers) RunOnce(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	metrics.CountExecution(string(req.Language))
	result := h.svc.Execute(r.Context(), req.Code, req.Language)
	utils.JSON(w, http.StatusOK, result)
}

/*** Languages ***/

func (h *Handlers) ListLanguages(w http.ResponseWriter, _ *http.Request) {
	utils.JSON(w, http.StatusOK, h.svc.Languages())
}
