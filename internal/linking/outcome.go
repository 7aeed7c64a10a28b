package linking

import (
	"errors"

	"github.com/gogotex/admin-service/internal/users"
)

// ErrCSRFMismatch is returned when the callback state does not match the
// attempt it claims to belong to. The provider is never contacted.
var ErrCSRFMismatch = errors.New("csrf state mismatch")

// Kind enumerates the results of a Google callback.
type Kind int

const (
	LoggedIn Kind = iota + 1
	LinkingConflict
	ProviderFailure
)

func (k Kind) String() string {
	switch k {
	case LoggedIn:
		return "logged_in"
	case LinkingConflict:
		return "linking_conflict"
	case ProviderFailure:
		return "provider_error"
	}
	return "unknown"
}

// Outcome is the result of one linking decision. Identity is set for
// LoggedIn, Email for LinkingConflict and Cause for ProviderFailure.
// Provisioned marks a LoggedIn for an account created by this decision.
type Outcome struct {
	Kind        Kind
	Identity    users.Identity
	Provisioned bool
	Email       string
	Cause       error
	RedirectURI string
}

func loggedIn(id users.Identity) Outcome { return Outcome{Kind: LoggedIn, Identity: id} }

func conflict(email string) Outcome { return Outcome{Kind: LinkingConflict, Email: email} }

func providerFailure(err error) Outcome {
	return Outcome{Kind: ProviderFailure, Cause: &ProviderError{Err: err}}
}

// ProviderError marks a failure on the provider side of the flow: a denied
// consent, a failed exchange or an unusable profile.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return "oauth provider: " + e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }
