package sessions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gogotex/admin-service/internal/config"
	"github.com/gogotex/admin-service/internal/tokens"
	"github.com/gogotex/admin-service/internal/users"
)

// ErrRevoked is returned by Verify for a token that was signed out.
var ErrRevoked = errors.New("session revoked")

// Manager issues and checks signed session cookies.
type Manager struct {
	cfg       config.SessionConfig
	blacklist *Blacklist
}

func NewManager(cfg config.SessionConfig, b *Blacklist) *Manager {
	if cfg.CookieName == "" {
		cfg.CookieName = "admin_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 8 * time.Hour
	}
	return &Manager{cfg: cfg, blacklist: b}
}

// CookieName is the name of the session cookie.
func (m *Manager) CookieName() string { return m.cfg.CookieName }

// Verify parses a raw session token and rejects revoked ones.
func (m *Manager) Verify(ctx context.Context, raw string) (*tokens.Claims, error) {
	claims, err := tokens.ParseAccessToken(m.cfg.Secret, raw)
	if err != nil {
		return nil, err
	}
	revoked, err := m.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// For returns the session capability bound to one request.
func (m *Manager) For(c *gin.Context) *Session {
	return &Session{m: m, c: c}
}

// Session is the per-request view of the signed-in user. Handlers get one
// from Manager.For and never touch the cookie directly.
type Session struct {
	m      *Manager
	c      *gin.Context
	claims *tokens.Claims
	loaded bool
}

// Login records id as the signed-in user for this browser.
func (s *Session) Login(id users.Identity) error {
	raw, err := tokens.GenerateAccessToken(s.m.cfg.Secret, id, s.m.cfg.TTL)
	if err != nil {
		return err
	}
	s.setCookie(raw, int(s.m.cfg.TTL.Seconds()))
	s.claims, err = tokens.ParseAccessToken(s.m.cfg.Secret, raw)
	s.loaded = err == nil
	return err
}

// Logout revokes the current token, if any, and clears the cookie.
func (s *Session) Logout() error {
	claims := s.load()
	s.setCookie("", -1)
	s.claims, s.loaded = nil, true
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.m.blacklist.Revoke(s.c.Request.Context(), claims.ID, time.Until(claims.ExpiresAt.Time))
}

// Claims returns the verified claims of the current user, or nil.
func (s *Session) Claims() *tokens.Claims {
	return s.load()
}

// CurrentRole returns the role of the signed-in user, or "" when anonymous.
func (s *Session) CurrentRole() string {
	if claims := s.load(); claims != nil {
		return claims.Role
	}
	return ""
}

func (s *Session) load() *tokens.Claims {
	if s.loaded {
		return s.claims
	}
	s.loaded = true
	raw, err := s.c.Cookie(s.m.cfg.CookieName)
	if err != nil || raw == "" {
		return nil
	}
	claims, err := s.m.Verify(s.c.Request.Context(), raw)
	if err != nil {
		return nil
	}
	s.claims = claims
	return claims
}

func (s *Session) setCookie(value string, maxAge int) {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(s.m.cfg.CookieName, value, maxAge, "/", "", s.m.cfg.Secure, true)
}
