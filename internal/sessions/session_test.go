package sessions

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/gogotex/admin-service/internal/config"
	"github.com/gogotex/admin-service/internal/users"
)

func testManager(t *testing.T) *Manager {
	_, client := newTestRedis(t)
	return NewManager(config.SessionConfig{Secret: "test-secret", TTL: time.Hour, CookieName: "sid"}, NewBlacklist(client))
}

func newContext(cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		c.Request.AddCookie(ck)
	}
	return c, w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSessionLoginSetsCookie(t *testing.T) {
	m := testManager(t)
	c, w := newContext()

	s := m.For(c)
	require.Equal(t, "", s.CurrentRole())
	require.NoError(t, s.Login(users.Identity{ID: 3, Username: "root", Role: "admin"}))
	require.Equal(t, "admin", s.CurrentRole())

	ck := sessionCookie(t, w, "sid")
	require.True(t, ck.HttpOnly)
	require.NotEmpty(t, ck.Value)

	// the next request carries the cookie
	c2, _ := newContext(ck)
	s2 := m.For(c2)
	require.Equal(t, "admin", s2.CurrentRole())
	require.Equal(t, "3", s2.Claims().Subject)
}

func TestSessionLogoutRevokesToken(t *testing.T) {
	m := testManager(t)
	c, w := newContext()
	require.NoError(t, m.For(c).Login(users.Identity{ID: 1, Username: "alice", Role: "user"}))
	ck := sessionCookie(t, w, "sid")

	c2, w2 := newContext(ck)
	s := m.For(c2)
	require.NoError(t, s.Logout())
	require.Equal(t, "", s.CurrentRole())
	cleared := sessionCookie(t, w2, "sid")
	require.Empty(t, cleared.Value)

	// replaying the old cookie is rejected
	_, err := m.Verify(c2.Request.Context(), ck.Value)
	require.ErrorIs(t, err, ErrRevoked)
	c3, _ := newContext(ck)
	require.Equal(t, "", m.For(c3).CurrentRole())
}

func TestSessionLogoutAnonymous(t *testing.T) {
	m := testManager(t)
	c, _ := newContext()
	require.NoError(t, m.For(c).Logout())
}

func TestSessionIgnoresForeignToken(t *testing.T) {
	m := testManager(t)
	c, _ := newContext(&http.Cookie{Name: "sid", Value: "not-a-token"})
	s := m.For(c)
	require.Nil(t, s.Claims())
	require.Equal(t, "", s.CurrentRole())
}
