package state

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leagueledger/internal/platform/config"
)

func newManager() *Manager {
	return NewManager(config.StateConfig{
		CookieName: "__league_oauth_state",
		TTL:        5 * time.Minute,
		Secure:     true,
	})
}

func TestGenerate(t *testing.T) {
	m := newManager()

	first, err := m.Generate()
	require.NoError(t, err)
	second, err := m.Generate()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	// 32 bytes of entropy survive the encoding.
	assert.GreaterOrEqual(t, len(first), 43)
}

func TestBindSetsCookieAttributes(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()

	m.Bind(rec, "some-state")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "__league_oauth_state", c.Name)
	assert.Equal(t, "some-state", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, int((5 * time.Minute).Seconds()), c.MaxAge)
}

func requestWithCookie(m *Manager, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/oauth/callback", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: m.cookieName, Value: value})
	}
	return req
}

func TestConsume(t *testing.T) {
	m := newManager()

	t.Run("matching state validates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assert.True(t, m.Consume(rec, requestWithCookie(m, "abc"), "abc"))
	})

	t.Run("mismatch fails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assert.False(t, m.Consume(rec, requestWithCookie(m, "abc"), "xyz"))
	})

	t.Run("missing cookie fails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assert.False(t, m.Consume(rec, requestWithCookie(m, ""), "abc"))
	})

	t.Run("missing returned value fails even with cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assert.False(t, m.Consume(rec, requestWithCookie(m, "abc"), ""))
	})

	t.Run("cookie is cleared on success and failure", func(t *testing.T) {
		for _, returned := range []string{"abc", "wrong"} {
			rec := httptest.NewRecorder()
			m.Consume(rec, requestWithCookie(m, "abc"), returned)

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, -1, cookies[0].MaxAge, "cookie must be expired after consumption")
			assert.Empty(t, cookies[0].Value)
		}
	})
}
