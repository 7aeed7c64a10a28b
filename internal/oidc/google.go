package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/gogotex/admin-service/internal/config"
)

var (
	ErrMissingSubject   = errors.New("provider profile has no subject")
	ErrMissingEmail     = errors.New("provider profile has no email")
	ErrEmailNotVerified = errors.New("provider email is not verified")
)

// Profile is the verified external identity returned by the provider.
type Profile struct {
	ID    string
	Email string
	Name  string
}

// Validate checks the fields a linking decision depends on.
func (p Profile) Validate() error {
	if p.ID == "" {
		return ErrMissingSubject
	}
	if p.Email == "" {
		return ErrMissingEmail
	}
	return nil
}

// GoogleProvider wraps the discovered OIDC provider and the OAuth2 client
// configuration used for the authorization code flow.
type GoogleProvider struct {
	provider *oidc.Provider
	oauth    *oauth2.Config
}

// NewGoogleProvider discovers the issuer and prepares the OAuth2 client.
func NewGoogleProvider(ctx context.Context, cfg config.GoogleConfig) (*GoogleProvider, error) {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "https://accounts.google.com"
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	// a fixed auth style keeps a failed exchange to one request
	endpoint := provider.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &GoogleProvider{
		provider: provider,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

// AuthCodeURL returns the provider consent URL carrying state.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return tok, nil
}

// Profile fetches the userinfo for tok. Unverified emails are rejected.
func (g *GoogleProvider) Profile(ctx context.Context, tok *oauth2.Token) (Profile, error) {
	info, err := g.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return Profile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	if !info.EmailVerified {
		return Profile{}, ErrEmailNotVerified
	}
	var extra struct {
		Name string `json:"name"`
	}
	if err := info.Claims(&extra); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	p := Profile{ID: info.Subject, Email: info.Email, Name: extra.Name}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Identify runs the code exchange and profile fetch as one step.
func (g *GoogleProvider) Identify(ctx context.Context, code string) (Profile, error) {
	tok, err := g.Exchange(ctx, code)
	if err != nil {
		return Profile{}, err
	}
	return g.Profile(ctx, tok)
}
