package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogotex/admin-service/internal/config"
)

// fakeIssuer serves discovery, token and userinfo endpoints.
type fakeIssuer struct {
	srv      *httptest.Server
	userinfo map[string]interface{}
	codes    map[string]string
	tokenHit atomic.Int32
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	f := &fakeIssuer{
		userinfo: map[string]interface{}{"sub": "g-1", "email": "a@example.com", "email_verified": true, "name": "Alice"},
		codes:    map[string]string{"good-code": "at-1"},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":                 f.srv.URL,
			"authorization_endpoint": f.srv.URL + "/auth",
			"token_endpoint":         f.srv.URL + "/token",
			"userinfo_endpoint":      f.srv.URL + "/userinfo",
			"jwks_uri":               f.srv.URL + "/keys",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenHit.Add(1)
		_ = r.ParseForm()
		at, ok := f.codes[r.Form.Get("code")]
		if r.Form.Get("client_id") != "cid" || r.Form.Get("client_secret") != "csecret" {
			ok = false
		}
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": at, "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.userinfo)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newTestProvider(t *testing.T, f *fakeIssuer) *GoogleProvider {
	p, err := NewGoogleProvider(context.Background(), config.GoogleConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURL:  "http://localhost/admin/sign/google",
		Issuer:       f.srv.URL,
	})
	require.NoError(t, err)
	return p
}

func TestAuthCodeURL(t *testing.T) {
	f := newFakeIssuer(t)
	p := newTestProvider(t, f)

	u, err := url.Parse(p.AuthCodeURL("st-1"))
	require.NoError(t, err)
	assert.Equal(t, "/auth", u.Path)
	q := u.Query()
	assert.Equal(t, "st-1", q.Get("state"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://localhost/admin/sign/google", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "openid")
	assert.Contains(t, q.Get("scope"), "email")
}

func TestIdentify(t *testing.T) {
	f := newFakeIssuer(t)
	p := newTestProvider(t, f)

	profile, err := p.Identify(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, Profile{ID: "g-1", Email: "a@example.com", Name: "Alice"}, profile)
}

func TestIdentify_BadCode(t *testing.T) {
	f := newFakeIssuer(t)
	p := newTestProvider(t, f)

	_, err := p.Identify(context.Background(), "bad-code")
	require.Error(t, err)
	assert.EqualValues(t, 1, f.tokenHit.Load())
}

func TestIdentify_UnverifiedEmail(t *testing.T) {
	f := newFakeIssuer(t)
	f.userinfo["email_verified"] = false
	p := newTestProvider(t, f)

	_, err := p.Identify(context.Background(), "good-code")
	require.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestIdentify_MissingEmail(t *testing.T) {
	f := newFakeIssuer(t)
	delete(f.userinfo, "email")
	p := newTestProvider(t, f)

	_, err := p.Identify(context.Background(), "good-code")
	require.ErrorIs(t, err, ErrMissingEmail)
}

func TestNewGoogleProvider_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, err := NewGoogleProvider(context.Background(), config.GoogleConfig{Issuer: srv.URL})
	require.Error(t, err)
}

func TestProfileValidate(t *testing.T) {
	require.ErrorIs(t, Profile{Email: "a@b.c"}.Validate(), ErrMissingSubject)
	require.ErrorIs(t, Profile{ID: "x"}.Validate(), ErrMissingEmail)
	require.NoError(t, Profile{ID: "x", Email: "a@b.c"}.Validate())
}
