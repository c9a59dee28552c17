package browser

import "time"

const (
	DefaultNavigateTimeout = 30 * time.Second
	DefaultActionTimeout   = 15 * time.Second
	DefaultLoginTimeout    = 10 * time.Minute
	DefaultSessionCookie   = "session"
)

// Selectors locates the conversation widgets on a board page. Empty
// optional selectors (Busy, Failure, Missing, Account) disable the
// corresponding check.
type Selectors struct {
	// Composer is the question input.
	Composer string
	// Send is the submit control next to the composer.
	Send string
	// Answer matches answer blocks; the last match is the current answer.
	Answer string
	// Busy marks an answer still being written.
	Busy string
	// Failure marks a failed exchange.
	Failure string
	// Missing marks a board-does-not-exist page.
	Missing string
	// Account holds the signed-in account label.
	Account string
}

// Config drives the Chrome-backed session driver and login flow.
type Config struct {
	// BaseURL is the board site root, used by login and session probes.
	BaseURL string
	// Headless controls the query browser. Login always runs headed.
	Headless bool
	// SignInHosts are hosts that indicate an authentication redirect.
	SignInHosts []string
	// SessionCookie names the cookie whose presence marks a signed-in
	// session.
	SessionCookie string

	NavigateTimeout time.Duration
	ActionTimeout   time.Duration
	LoginTimeout    time.Duration

	Selectors Selectors
}

func (c Config) withDefaults() Config {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = DefaultNavigateTimeout
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = DefaultActionTimeout
	}
	if c.LoginTimeout <= 0 {
		c.LoginTimeout = DefaultLoginTimeout
	}
	if c.SessionCookie == "" {
		c.SessionCookie = DefaultSessionCookie
	}
	if c.Selectors.Composer == "" {
		c.Selectors.Composer = "textarea[placeholder*='Ask'], textarea[placeholder*='question'], " +
			"textarea[aria-label*='Ask'], textarea[aria-label*='question'], " +
			"div[contenteditable='true'][role='textbox']"
	}
	if c.Selectors.Send == "" {
		c.Selectors.Send = "button[aria-label*='Send'], button[data-testid*='send'], button[class*='send']"
	}
	if c.Selectors.Answer == "" {
		c.Selectors.Answer = "div.ym-askai-container, div.message-blocks, " +
			"[data-message-author='assistant'], [data-role='assistant']"
	}
	if c.Selectors.Busy == "" {
		c.Selectors.Busy = "div.thinking-message, [data-testid*='thinking']"
	}
	if c.Selectors.Failure == "" {
		c.Selectors.Failure = "[data-state='error']"
	}

	return c
}
