package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Flash keys carried in the ?flash= query parameter after a redirect.
const (
	FlashInvalidCredentials = "invalid_credentials"
	FlashInvalidEmail       = "invalid_email"
	FlashInvalidForm        = "invalid_form"
	FlashWeakPassword       = "weak_password"
	FlashDuplicateName      = "duplicate_name"
	FlashEmailTaken         = "email_taken"
	FlashProviderError      = "provider_error"
	FlashCSRFMismatch       = "csrf_mismatch"
	FlashSignedOut          = "signed_out"
	FlashWelcome            = "welcome"
)

var flashMessages = map[string]string{
	FlashInvalidCredentials: "Invalid username or password.",
	FlashInvalidEmail:       "Please enter a valid email address.",
	FlashInvalidForm:        "Please fill in all fields.",
	FlashWeakPassword:       "Password is too short.",
	FlashDuplicateName:      "Username or email is already taken.",
	FlashEmailTaken:         "Somebody already signed up with this email. Sign in with your password.",
	FlashProviderError:      "Google sign-in failed. Please try again.",
	FlashCSRFMismatch:       "Invalid sign-in request. Please try again.",
	FlashSignedOut:          "You have been signed out.",
	FlashWelcome:            "Welcome!",
}

// FlashMessage returns the user-facing text for key, or "" for unknown keys.
func FlashMessage(key string) string {
	return flashMessages[key]
}

func redirectWithFlash(c *gin.Context, path, key string) {
	if key != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + url.Values{"flash": {key}}.Encode()
	}
	c.Redirect(http.StatusFound, path)
}
