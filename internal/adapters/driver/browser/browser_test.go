package browser

import (
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWithDefaultsFillsSelectorsAndTimeouts(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()

	assert.Equal(t, DefaultNavigateTimeout, cfg.NavigateTimeout)
	assert.Equal(t, DefaultActionTimeout, cfg.ActionTimeout)
	assert.Equal(t, DefaultLoginTimeout, cfg.LoginTimeout)
	assert.Equal(t, DefaultSessionCookie, cfg.SessionCookie)
	assert.NotEmpty(t, cfg.Selectors.Composer)
	assert.NotEmpty(t, cfg.Selectors.Send)
	assert.NotEmpty(t, cfg.Selectors.Answer)
	assert.Empty(t, cfg.Selectors.Missing, "missing-board detection stays off until configured")
}

func TestConfigWithDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		SessionCookie: "sid",
		Selectors:     Selectors{Composer: "#ask"},
	}.withDefaults()

	assert.Equal(t, "sid", cfg.SessionCookie)
	assert.Equal(t, "#ask", cfg.Selectors.Composer)
	assert.Contains(t, cfg.Selectors.Send, "button[aria-label*='Send']")
}

func TestCookiesRoundTripThroughJSON(t *testing.T) {
	t.Parallel()

	cookies := []sessionCookie{
		{
			Name:     "session",
			Value:    "abc123",
			Domain:   ".boards.example.com",
			Path:     "/",
			Expires:  1767225600,
			HTTPOnly: true,
			Secure:   true,
			SameSite: "Lax",
		},
		{Name: "theme", Value: "dark"},
	}

	encoded, err := cookiesToJSON(cookies)
	require.NoError(t, err)

	decoded, err := cookiesFromJSON(encoded)
	require.NoError(t, err)
	assert.Equal(t, cookies, decoded)
}

func TestCookiesFromJSONRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := cookiesFromJSON("{not a cookie list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode session cookies")
}

func TestFromNetworkCookiesCopiesAllFields(t *testing.T) {
	t.Parallel()

	got := fromNetworkCookies([]*network.Cookie{
		{
			Name:     "session",
			Value:    "v",
			Domain:   "boards.example.com",
			Path:     "/boards",
			Expires:  42,
			HTTPOnly: true,
			Secure:   true,
			SameSite: network.CookieSameSiteStrict,
		},
	})

	require.Len(t, got, 1)
	assert.Equal(t, sessionCookie{
		Name:     "session",
		Value:    "v",
		Domain:   "boards.example.com",
		Path:     "/boards",
		Expires:  42,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	}, got[0])
}

func TestSignInRedirectMatchesConfiguredHosts(t *testing.T) {
	t.Parallel()

	cfg := Config{SignInHosts: []string{"auth.example.com"}}.withDefaults()

	assert.True(t, signInRedirect(cfg, "https://AUTH.example.com/start"))
	assert.False(t, signInRedirect(cfg, "https://boards.example.com/boards/alpha"))
}

func TestSignInRedirectMatchesPathMarkers(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()

	assert.True(t, signInRedirect(cfg, "https://boards.example.com/sign-in"))
	assert.True(t, signInRedirect(cfg, "https://boards.example.com/signin?next=%2Fboards"))
	assert.True(t, signInRedirect(cfg, "https://boards.example.com/account/LOGIN"))
	assert.False(t, signInRedirect(cfg, "https://boards.example.com/boards/alpha"))
	assert.False(t, signInRedirect(cfg, ""))
}

func TestSignInRedirectFlagsOffSiteHops(t *testing.T) {
	t.Parallel()

	cfg := Config{BaseURL: "https://boards.example.com"}.withDefaults()

	assert.True(t, signInRedirect(cfg, "https://accounts.google.com/o/oauth2/auth"))
	assert.False(t, signInRedirect(cfg, "https://boards.example.com/boards/alpha"))
	assert.False(t, signInRedirect(cfg, "https://app.boards.example.com/boards/alpha"))
}

func TestSignInURLJoinsCleanly(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://boards.example.com/sign-in", signInURL("https://boards.example.com"))
	assert.Equal(t, "https://boards.example.com/sign-in", signInURL("https://boards.example.com/"))
}

func TestHasSessionCookieIgnoresEmptyValues(t *testing.T) {
	t.Parallel()

	cookies := []sessionCookie{
		{Name: "session", Value: ""},
		{Name: "theme", Value: "dark"},
	}
	assert.False(t, hasSessionCookie(cookies, "session"))

	cookies = append(cookies, sessionCookie{Name: "SESSION", Value: "abc"})
	assert.True(t, hasSessionCookie(cookies, "session"))
}
