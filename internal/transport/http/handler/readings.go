package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stress-shield-api/internal/application/history"
	"github.com/stress-shield-api/internal/application/ingest"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/validate"
	"github.com/stress-shield-api/internal/transport/http/middleware"
)

// ReadingHandler serves reading submission and the user's history.
type ReadingHandler struct {
	ingest  ingest.Service
	history history.Service
}

func NewReadingHandler(ingestSvc ingest.Service, historySvc history.Service) *ReadingHandler {
	return &ReadingHandler{ingest: ingestSvc, history: historySvc}
}

func (h *ReadingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in domain.ReadingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(in); err != nil {
		httpError(w, err)
		return
	}
	sub, err := h.ingest.SubmitReading(r.Context(), claims.UserID, in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *ReadingHandler) History(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	readings, err := h.history.Readings(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

func (h *ReadingHandler) Interventions(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.history.Interventions(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReadingHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	res, err := h.history.Export(r.Context(), claims.UserID, r.URL.Query().Get("format"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReadingHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	alerts, err := h.history.Alerts(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
