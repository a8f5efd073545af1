package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskboard-backend/internal/auth"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc, _ := newTestService()
	tokens := auth.NewService(auth.Config{Secret: []byte("test-secret"), TTL: time.Hour})
	return NewHandler(svc, tokens, zap.NewNop().Sugar())
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, r)
	return rec
}

func TestRegisterHandler_Created(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name": "T", "email": "t@x.com", "password": "password123",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "created")
}

func TestRegisterHandler_Validation(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name": "T", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// non-string field fails JSON decoding at the boundary
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"T","email":"t@x.com","password":12345678}`))
	rec = httptest.NewRecorder()
	h.Register(rec, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandler_DuplicateConflict(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	body := map[string]string{"name": "T", "email": "t@x.com", "password": "password123"}
	rec := postJSON(t, h.Register, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Register, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "already exists")
}

func TestLoginHandler_Success(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name": "T", "email": "t@x.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "t@x.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Token, "eyJ"), "token has the signed-token shape")
	assert.NotZero(t, resp.UserID)
	assert.Equal(t, "t@x.com", resp.User.Email)

	cookies := rec.Result().Cookies()
	var tokenCookie, userCookie *http.Cookie
	for _, c := range cookies {
		switch c.Name {
		case auth.TokenCookie:
			tokenCookie = c
		case auth.UserCookie:
			userCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.True(t, tokenCookie.HttpOnly)
	assert.Equal(t, "/", tokenCookie.Path)
	assert.Equal(t, resp.Token, tokenCookie.Value)
	assert.Equal(t, 3600, tokenCookie.MaxAge)

	require.NotNil(t, userCookie)
	assert.False(t, userCookie.HttpOnly, "profile cookie stays script-readable")
	decoded, err := url.QueryUnescape(userCookie.Value)
	require.NoError(t, err)
	var profile map[string]any
	require.NoError(t, json.Unmarshal([]byte(decoded), &profile))
	assert.Equal(t, "t@x.com", profile["email"])
}

func TestLoginHandler_WrongPasswordVsUnknownUser(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name": "T", "email": "t@x.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "t@x.com", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "incorrect password")

	rec = postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "password123",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestLogoutHandler_ClearsCookies(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	assert.True(t, cleared[auth.TokenCookie])
	assert.True(t, cleared[auth.UserCookie])
}
