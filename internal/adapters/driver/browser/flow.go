package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

const loginPollInterval = 2 * time.Second

// Flow runs the interactive login and validates stored sessions. Login
// opens a headed browser and waits for the user to finish signing in;
// completion is detected by the appearance of the session cookie.
type Flow struct {
	cfg Config
}

var _ ports.AuthFlow = (*Flow)(nil)

func NewFlow(cfg Config) *Flow {
	return &Flow{cfg: cfg.withDefaults()}
}

// Login opens the board site in a visible browser and captures the
// session cookies once sign-in completes.
func (f *Flow) Login(ctx context.Context) (ports.LoginResult, error) {
	if f.cfg.BaseURL == "" {
		return ports.LoginResult{}, errors.New("base url is not configured")
	}

	tabCtx, cancel := f.newTab(ctx, false)
	defer cancel()

	runCtx, cancelRun := context.WithTimeout(tabCtx, f.cfg.LoginTimeout)
	defer cancelRun()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(signInURL(f.cfg.BaseURL)),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("open sign-in page: %w", err)
	}

	cookies, err := f.waitForSession(runCtx)
	if err != nil {
		return ports.LoginResult{}, err
	}

	sessionJSON, err := cookiesToJSON(cookies)
	if err != nil {
		return ports.LoginResult{}, err
	}

	// The label is cosmetic, so sign-in still succeeds without it.
	label := f.accountLabel(runCtx)

	return ports.LoginResult{SessionJSON: sessionJSON, AccountLabel: label}, nil
}

// Probe loads the board site with the stored session and reports
// whether it still signs in.
func (f *Flow) Probe(ctx context.Context, sessionJSON string) (domain.AuthStatus, error) {
	if f.cfg.BaseURL == "" {
		return domain.AuthStatusUnauthenticated, errors.New("base url is not configured")
	}

	cookies, err := cookiesFromJSON(sessionJSON)
	if err != nil {
		return domain.AuthStatusInvalid, nil
	}

	tabCtx, cancel := f.newTab(ctx, f.cfg.Headless)
	defer cancel()

	runCtx, cancelRun := context.WithTimeout(tabCtx, f.cfg.NavigateTimeout)
	defer cancelRun()

	err = chromedp.Run(runCtx,
		setCookiesAction(cookies),
		chromedp.Navigate(f.cfg.BaseURL),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return domain.AuthStatusUnauthenticated, fmt.Errorf("probe session: %w", err)
	}

	var href string
	if err := chromedp.Run(runCtx, chromedp.Location(&href)); err != nil {
		return domain.AuthStatusUnauthenticated, fmt.Errorf("probe session: %w", err)
	}

	if signInRedirect(f.cfg, href) {
		return domain.AuthStatusExpired, nil
	}

	return domain.AuthStatusValid, nil
}

func signInURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/sign-in"
}

// newTab builds a dedicated allocator and tab. Login and probe runs are
// rare enough that a browser per call is simpler than sharing one.
func (f *Flow) newTab(ctx context.Context, headless bool) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	return tabCtx, func() {
		tabCancel()
		allocCancel()
	}
}

// waitForSession polls the cookie jar until the session cookie shows up
// or the login deadline passes.
func (f *Flow) waitForSession(ctx context.Context) ([]sessionCookie, error) {
	ticker := time.NewTicker(loginPollInterval)
	defer ticker.Stop()

	for {
		var cookies []sessionCookie
		if err := chromedp.Run(ctx, collectCookiesAction(&cookies)); err != nil {
			return nil, fmt.Errorf("watch sign-in progress: %w", err)
		}
		if hasSessionCookie(cookies, f.cfg.SessionCookie) {
			return cookies, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("sign-in did not complete: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func hasSessionCookie(cookies []sessionCookie, name string) bool {
	for _, c := range cookies {
		if strings.EqualFold(c.Name, name) && c.Value != "" {
			return true
		}
	}

	return false
}

func (f *Flow) accountLabel(ctx context.Context) string {
	if f.cfg.Selectors.Account == "" {
		return ""
	}

	labelCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var label string
	err := chromedp.Run(labelCtx,
		chromedp.Text(f.cfg.Selectors.Account, &label, chromedp.AtLeast(0)),
	)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(label)
}
