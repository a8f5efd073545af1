package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"taskboard-backend/internal/auth"
	"taskboard-backend/internal/storage"
	"taskboard-backend/internal/user/entity"
)

// Handler exposes HTTP endpoints for registration and login.
type Handler struct {
	svc    *Service
	tokens *auth.Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *auth.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	_, err := h.svc.Register(r.Context(), RegisterInput(req))
	if err != nil {
		var ve ValidationError
		switch {
		case errors.As(err, &ve):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": ve.Error()})
		case errors.Is(err, ErrEmailTaken):
			h.writeJSON(w, http.StatusConflict, map[string]string{"message": "user already exists"})
		case errors.Is(err, storage.ErrUnavailable):
			h.logger.Errorw("register failed, storage unavailable", "err", err)
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "service unavailable"})
		default:
			h.logger.Errorw("register failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "user created successfully"})
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login; the token is also set as
// an http-only cookie alongside a readable profile cookie.
type LoginResponse struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	UserID  int64          `json:"userId"`
	User    entity.Profile `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	u, err := h.svc.Login(r.Context(), LoginInput(req))
	if err != nil {
		var ve ValidationError
		switch {
		case errors.As(err, &ve):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"message": ve.Error()})
		case errors.Is(err, ErrUserNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		case errors.Is(err, ErrWrongPassword):
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "incorrect password"})
		case errors.Is(err, storage.ErrUnavailable):
			h.logger.Errorw("login failed, storage unavailable", "err", err)
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "service unavailable"})
		default:
			h.logger.Errorw("login failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		}
		return
	}

	token, expiresAt, err := h.tokens.Issue(u.ID, u.Email)
	if err != nil {
		h.logger.Errorw("token issue failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	maxAge := int(h.tokens.TTL().Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   maxAge,
	})
	profile := u.Profile()
	if blob, err := json.Marshal(profile); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     auth.UserCookie,
			Value:    url.QueryEscape(string(blob)),
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
			Expires:  expiresAt,
			MaxAge:   maxAge,
		})
	}

	h.writeJSON(w, http.StatusOK, LoginResponse{
		Message: "login successful",
		Token:   token,
		UserID:  u.ID,
		User:    profile,
	})
}

// Logout clears the session cookies. Tokens have no server-side revocation,
// so an already-issued token stays valid until its natural expiry.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{auth.TokenCookie, auth.UserCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
