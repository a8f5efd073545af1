package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(ttl time.Duration) *Service {
	return NewService(Config{Secret: []byte("test-secret"), TTL: ttl})
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := testService(time.Hour)
	token, expiresAt, err := svc.Issue(42, "t@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "t@x.com", claims.Email)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := testService(-time.Minute)
	token, _, err := svc.Issue(1, "a@b.co")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.Error(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := testService(time.Hour).Issue(1, "a@b.co")
	require.NoError(t, err)

	other := NewService(Config{Secret: []byte("different-secret"), TTL: time.Hour})
	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := testService(time.Hour).Verify("not.a.jwt")
	require.Error(t, err)
}

func TestIdentityFromRequest_Bearer(t *testing.T) {
	t.Parallel()

	svc := testService(time.Hour)
	token, _, err := svc.Issue(7, "a@b.co")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	id, ok := svc.IdentityFromRequest(r)
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestIdentityFromRequest_CookieFallback(t *testing.T) {
	t.Parallel()

	svc := testService(time.Hour)
	token, _, err := svc.Issue(9, "a@b.co")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	// garbage in the header must not shadow a valid cookie
	r.Header.Set("Authorization", "Bearer garbage")
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})

	id, ok := svc.IdentityFromRequest(r)
	require.True(t, ok)
	assert.Equal(t, int64(9), id)
}

func TestIdentityFromRequest_NoIdentity(t *testing.T) {
	t.Parallel()

	svc := testService(time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	_, ok := svc.IdentityFromRequest(r)
	assert.False(t, ok)

	r = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "expired-or-forged"})
	_, ok = svc.IdentityFromRequest(r)
	assert.False(t, ok)
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	svc := testService(time.Hour)
	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	})
	protected := svc.RequireUser(next)

	// no identity
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid bearer
	token, _, err := svc.Issue(11, "a@b.co")
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(11), seen)
}
