package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"taskboard-backend/internal/auth"
	"taskboard-backend/internal/storage"
)

// Handler exposes HTTP endpoints for task CRUD. All routes are mounted behind
// auth.RequireUser, so the user id is always present in the context.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// TaskRequest is the body for create and update. Pointer fields distinguish
// omitted from empty.
type TaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	tasks, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid task payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	t, err := h.svc.Create(r.Context(), userID, Input(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid task payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	t, err := h.svc.Update(r.Context(), userID, id, Input(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := taskID(r)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

// taskID parses the {id} path segment. A non-numeric id behaves like a
// missing task rather than a malformed request.
func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": ve.Error()})
	case errors.Is(err, ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
	case errors.Is(err, storage.ErrUnavailable):
		h.logger.Errorw("task storage unavailable", "err", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "service unavailable"})
	default:
		h.logger.Errorw("task operation failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
