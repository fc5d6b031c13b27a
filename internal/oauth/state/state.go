// Package state issues and validates the anti-forgery value that ties one
// browser to one authorization flow. There is no server-side session table;
// the cookie is the only durable copy of the state between initiation and
// callback.
package state

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"leagueledger/internal/platform/config"
)

const stateBytes = 32

type Manager struct {
	cookieName string
	maxAge     int
	secure     bool
}

func NewManager(cfg config.StateConfig) *Manager {
	return &Manager{
		cookieName: cfg.CookieName,
		maxAge:     int(cfg.TTL.Seconds()),
		secure:     cfg.Secure,
	}
}

// Generate returns a fresh URL-safe state value with 32 bytes of entropy.
func (m *Manager) Generate() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Bind attaches the state to the response. The cookie must survive the
// cross-site redirect back from the provider, hence SameSite=None; it is
// http-only and secure so scripts and plain HTTP never see it.
func (m *Manager) Bind(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteNoneMode,
	})
}

// Consume compares the state returned by the provider against the bound
// cookie and clears the cookie in the same response. Clearing happens on
// every path so a replayed callback always fails the comparison. A missing
// cookie or missing returned value is a plain validation failure.
func (m *Manager) Consume(w http.ResponseWriter, r *http.Request, returned string) bool {
	cookie, err := r.Cookie(m.cookieName)
	m.Clear(w)
	if err != nil || returned == "" {
		return false
	}
	return cookie.Value == returned
}

// Clear expires the state cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteNoneMode,
	})
}
