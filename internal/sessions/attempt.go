package sessions

import "time"

// Attempt is one pending OAuth sign-in: the anti-forgery state handed to the
// provider and where to send the user afterwards. It lives until the
// callback consumes it or it expires.
type Attempt struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	RedirectURI string    `json:"redirectUri"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
