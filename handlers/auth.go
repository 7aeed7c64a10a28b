package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gogotex/admin-service/internal/config"
	"github.com/gogotex/admin-service/internal/linking"
	"github.com/gogotex/admin-service/internal/models"
	"github.com/gogotex/admin-service/internal/sessions"
	"github.com/gogotex/admin-service/internal/users"
	"github.com/gogotex/admin-service/pkg/logger"
	"github.com/gogotex/admin-service/pkg/metrics"
)

const (
	SignInPath    = "/admin/sign/in"
	DashboardPath = "/admin/dashboard"
	HomePath      = "/"
)

// Accounts is the account store as seen by the sign-in pages.
type Accounts interface {
	Authenticate(ctx context.Context, username, password string) (users.Identity, error)
	Register(ctx context.Context, username, email, password string) error
}

// Linker runs the Google sign-in flow.
type Linker interface {
	Start(ctx context.Context, redirectURI string) (string, string, error)
	Complete(ctx context.Context, cb linking.Callback) (linking.Outcome, error)
}

// AuthHandler serves the /admin/sign pages.
type AuthHandler struct {
	accounts Accounts
	linker   Linker // nil when Google sign-in is not configured
	sessions *sessions.Manager
	cfg      config.SessionConfig
}

func NewAuthHandler(cfg *config.Config, a Accounts, l Linker, m *sessions.Manager) *AuthHandler {
	sc := cfg.Session
	if sc.AttemptName == "" {
		sc.AttemptName = "oauth_attempt"
	}
	return &AuthHandler{accounts: a, linker: l, sessions: m, cfg: sc}
}

// Register mounts the sign routes on rg (expected to be /admin/sign).
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/in", h.SignInPage)
	rg.POST("/in", h.SignIn)
	rg.POST("/up", h.SignUp)
	rg.GET("/out", h.SignOut)
	rg.GET("/google/start", h.GoogleStart)
	rg.GET("/google", h.GoogleCallback)
}

// SignInPage describes the sign-in entry: pending flash message and the
// available sign-in methods.
func (h *AuthHandler) SignInPage(c *gin.Context) {
	key := c.Query("flash")
	c.JSON(http.StatusOK, gin.H{
		"flash":    key,
		"message":  FlashMessage(key),
		"role":     h.sessions.For(c).CurrentRole(),
		"google":   h.linker != nil,
		"backlink": safeBacklink(c.Query("backlink")),
		"links": gin.H{
			"signIn":      SignInPath,
			"signUp":      "/admin/sign/up",
			"googleStart": "/admin/sign/google/start",
		},
	})
}

type signInForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Backlink string `form:"backlink"`
}

// SignIn verifies a username/password pair and starts a session.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var form signInForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithFlash(c, SignInPath, FlashInvalidForm)
		return
	}

	id, err := h.accounts.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) || errors.Is(err, users.ErrInvalidCredential) {
			metrics.LoginAttempts.WithLabelValues("password", "invalid_credentials").Inc()
			redirectWithFlash(c, SignInPath, FlashInvalidCredentials)
			return
		}
		h.fail(c, "password", "authenticate", err)
		return
	}
	h.login(c, "password", id, form.Backlink, "")
}

type signUpForm struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// SignUp creates a local account and signs it in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var form signUpForm
	if err := c.ShouldBind(&form); err != nil {
		redirectWithFlash(c, SignInPath, FlashInvalidForm)
		return
	}
	if len(form.Password) < users.PasswordMinLength {
		redirectWithFlash(c, SignInPath, FlashWeakPassword)
		return
	}

	ctx := c.Request.Context()
	if err := h.accounts.Register(ctx, form.Username, form.Email, form.Password); err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidEmail):
			redirectWithFlash(c, SignInPath, FlashInvalidEmail)
		case errors.Is(err, users.ErrDuplicateName):
			redirectWithFlash(c, SignInPath, FlashDuplicateName)
		default:
			h.fail(c, "signup", "register", err)
		}
		return
	}

	id, err := h.accounts.Authenticate(ctx, form.Username, form.Password)
	if err != nil {
		h.fail(c, "signup", "authenticate new account", err)
		return
	}
	h.login(c, "signup", id, "", "")
}

// SignOut ends the session and returns to the front page.
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.sessions.For(c).Logout(); err != nil {
		logger.Warnf("revoke session: %v", err)
	}
	redirectWithFlash(c, HomePath, FlashSignedOut)
}

// GoogleStart opens an attempt and sends the browser to the provider.
func (h *AuthHandler) GoogleStart(c *gin.Context) {
	if h.linker == nil {
		redirectWithFlash(c, SignInPath, FlashProviderError)
		return
	}
	id, authURL, err := h.linker.Start(c.Request.Context(), safeBacklink(c.Query("backlink")))
	if err != nil {
		h.fail(c, "google", "start google sign-in", err)
		return
	}
	h.setAttemptCookie(c, id, int(h.cfg.AttemptTTL.Seconds()))
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback completes the provider redirect.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.linker == nil {
		redirectWithFlash(c, SignInPath, FlashProviderError)
		return
	}
	attemptID, _ := c.Cookie(h.cfg.AttemptName)
	h.setAttemptCookie(c, "", -1)

	out, err := h.linker.Complete(c.Request.Context(), linking.Callback{
		AttemptID: attemptID,
		State:     c.Query("state"),
		Code:      c.Query("code"),
		Error:     c.Query("error"),
	})
	if err != nil {
		if errors.Is(err, linking.ErrCSRFMismatch) {
			metrics.LoginAttempts.WithLabelValues("google", "csrf_mismatch").Inc()
			redirectWithFlash(c, SignInPath, FlashCSRFMismatch)
			return
		}
		h.fail(c, "google", "complete google sign-in", err)
		return
	}

	switch out.Kind {
	case linking.LoggedIn:
		flash := ""
		if out.Provisioned {
			metrics.AccountsProvisioned.Inc()
			flash = FlashWelcome
		}
		h.login(c, "google", out.Identity, out.RedirectURI, flash)
	case linking.LinkingConflict:
		metrics.LoginAttempts.WithLabelValues("google", "linking_conflict").Inc()
		redirectWithFlash(c, SignInPath, FlashEmailTaken)
	default:
		logger.Warnf("google sign-in failed: %v", out.Cause)
		metrics.LoginAttempts.WithLabelValues("google", "provider_error").Inc()
		redirectWithFlash(c, SignInPath, FlashProviderError)
	}
}

func (h *AuthHandler) login(c *gin.Context, method string, id users.Identity, backlink, flash string) {
	if err := h.sessions.For(c).Login(id); err != nil {
		h.fail(c, method, "create session", err)
		return
	}
	metrics.LoginAttempts.WithLabelValues(method, "success").Inc()
	target := safeBacklink(backlink)
	if target == "" {
		target = Landing(id.Role)
	}
	redirectWithFlash(c, target, flash)
}

func (h *AuthHandler) fail(c *gin.Context, method, op string, err error) {
	logger.Errorf("%s: %v", op, err)
	metrics.LoginAttempts.WithLabelValues(method, "error").Inc()
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h *AuthHandler) setAttemptCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.AttemptName, value, maxAge, "/admin/sign/google", "", h.cfg.Secure, true)
}

// Landing is where a freshly signed-in user goes when no backlink is set.
func Landing(role string) string {
	if role == models.RoleAdmin {
		return DashboardPath
	}
	return HomePath
}

// safeBacklink accepts local absolute paths only. Control bytes are
// rejected because browsers strip them, which turns "/\t/host" into "//host".
func safeBacklink(s string) string {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.Contains(s, `\`) {
		return ""
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return ""
		}
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return ""
	}
	return s
}
