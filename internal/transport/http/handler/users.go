package handler

import (
	"net/http"

	"github.com/stress-shield-api/internal/application/session"
	"github.com/stress-shield-api/internal/application/user"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/validate"
)

// UserHandler handles account registration.
type UserHandler struct {
	svc      user.Service
	sessions session.Service
}

func NewUserHandler(svc user.Service, sessions session.Service) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions}
}

// Register creates the account and signs it in.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpError(w, err)
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	result, err := h.sessions.Login(r.Context(), session.LoginRequest{Username: u.Username, Password: req.Password})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{Bearer: result.Bearer, User: u, Session: result.Session})
}
