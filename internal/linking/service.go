package linking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/admin-service/internal/oidc"
	"github.com/gogotex/admin-service/internal/sessions"
	"github.com/gogotex/admin-service/internal/users"
	"github.com/gogotex/admin-service/pkg/logger"
)

// Provider is the external identity provider.
type Provider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (oidc.Profile, error)
}

// StateStore keeps pending sign-in attempts.
type StateStore interface {
	Begin(ctx context.Context, redirectURI string) (*sessions.Attempt, error)
	Consume(ctx context.Context, id, state string) (*sessions.Attempt, error)
}

// Accounts is the part of the account store linking needs.
type Accounts interface {
	FindByGoogleID(ctx context.Context, googleID string) (*users.Identity, error)
	FindByEmail(ctx context.Context, email string) (*users.Identity, error)
	ProvisionExternal(ctx context.Context, googleID, email string) (users.Identity, error)
}

// Callback carries the query parameters of the provider redirect plus the
// attempt id from the browser cookie.
type Callback struct {
	AttemptID string
	State     string
	Code      string
	Error     string
}

// Service drives the Google sign-in flow.
type Service struct {
	provider Provider
	states   StateStore
	accounts Accounts
	timeout  time.Duration
}

func NewService(p Provider, s StateStore, a Accounts, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{provider: p, states: s, accounts: a, timeout: timeout}
}

// Start opens an attempt and returns its id with the provider URL.
func (s *Service) Start(ctx context.Context, redirectURI string) (string, string, error) {
	a, err := s.states.Begin(ctx, redirectURI)
	if err != nil {
		return "", "", fmt.Errorf("begin oauth attempt: %w", err)
	}
	return a.ID, s.provider.AuthCodeURL(a.State), nil
}

// Complete handles the provider callback. State is checked before anything
// else, including the provider error parameter.
func (s *Service) Complete(ctx context.Context, cb Callback) (Outcome, error) {
	a, err := s.states.Consume(ctx, cb.AttemptID, cb.State)
	if err != nil {
		if errors.Is(err, sessions.ErrStateMismatch) {
			return Outcome{}, ErrCSRFMismatch
		}
		return Outcome{}, fmt.Errorf("consume oauth attempt: %w", err)
	}

	if cb.Error != "" {
		return withRedirect(providerFailure(fmt.Errorf("authorization denied: %s", cb.Error)), a), nil
	}
	if cb.Code == "" {
		return withRedirect(providerFailure(errors.New("missing authorization code")), a), nil
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	profile, err := s.provider.Identify(pctx, cb.Code)
	cancel()
	if err != nil {
		return withRedirect(providerFailure(err), a), nil
	}

	out, err := s.Resolve(ctx, profile)
	if err != nil {
		return Outcome{}, err
	}
	return withRedirect(out, a), nil
}

// Resolve makes the linking decision for a verified profile: an account
// already linked to the provider id signs in, an unlinked account with the
// same email is a conflict, otherwise a new account is provisioned.
func (s *Service) Resolve(ctx context.Context, p oidc.Profile) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return providerFailure(err), nil
	}

	out, found, err := s.byProviderID(ctx, p)
	if err != nil || found {
		return out, err
	}

	existing, err := s.accounts.FindByEmail(ctx, p.Email)
	if err != nil {
		return Outcome{}, fmt.Errorf("find account by email: %w", err)
	}
	if existing != nil {
		logger.Infof("google sign-in for %s conflicts with unlinked account %d", p.Email, existing.ID)
		return conflict(p.Email), nil
	}

	id, err := s.accounts.ProvisionExternal(ctx, p.ID, p.Email)
	if err == nil {
		logger.Infof("provisioned account %d for google subject %s", id.ID, p.ID)
		out := loggedIn(id)
		out.Provisioned = true
		return out, nil
	}
	if !errors.Is(err, users.ErrDuplicateName) {
		return Outcome{}, fmt.Errorf("provision account: %w", err)
	}

	// a concurrent callback may have provisioned the same subject
	out, found, err = s.byProviderID(ctx, p)
	if err != nil || found {
		return out, err
	}
	return conflict(p.Email), nil
}

func (s *Service) byProviderID(ctx context.Context, p oidc.Profile) (Outcome, bool, error) {
	linked, err := s.accounts.FindByGoogleID(ctx, p.ID)
	if err != nil {
		return Outcome{}, false, fmt.Errorf("find account by google id: %w", err)
	}
	if linked == nil {
		return Outcome{}, false, nil
	}
	return loggedIn(*linked), true, nil
}

func withRedirect(o Outcome, a *sessions.Attempt) Outcome {
	o.RedirectURI = a.RedirectURI
	return o
}
