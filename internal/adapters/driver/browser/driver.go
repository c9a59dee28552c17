// Package browser talks to the board product through a real Chrome
// instance driven over the DevTools protocol. It implements both the
// query session driver and the interactive login flow.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"

	"github.com/bnema/boards-cli/internal/domain"
	"github.com/bnema/boards-cli/internal/ports"
)

// sendClickTimeout bounds the fallback click; the button may already be
// gone after a successful Enter submit.
const sendClickTimeout = 2 * time.Second

// Driver opens one browser tab per board session. Stored session
// cookies are injected before navigation, so a valid login made through
// Flow carries over to every query.
type Driver struct {
	cfg       Config
	secrets   ports.SecretStore
	secretKey string

	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu       sync.Mutex
	sessions map[ports.SessionHandle]*session
	closed   bool
}

type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

var _ ports.SessionDriver = (*Driver)(nil)

// NewDriver builds a driver backed by a single Chrome process. Tabs are
// created lazily per Open and torn down on Close; Shutdown releases the
// process itself.
func NewDriver(cfg Config, secrets ports.SecretStore, secretKey string) *Driver {
	cfg = cfg.withDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Driver{
		cfg:         cfg,
		secrets:     secrets,
		secretKey:   secretKey,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		sessions:    make(map[ports.SessionHandle]*session),
	}
}

// Open navigates a fresh tab to the board page with the stored session
// attached.
func (d *Driver) Open(ctx context.Context, boardURL string) (ports.SessionHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cookies, err := d.sessionCookies(ctx)
	if err != nil {
		return "", err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return "", errors.New("driver is shut down")
	}
	d.mu.Unlock()

	tabCtx, tabCancel := chromedp.NewContext(d.allocCtx)

	runCtx, cancel := opContext(ctx, tabCtx, d.cfg.NavigateTimeout)
	defer cancel()

	actions := []chromedp.Action{
		setCookiesAction(cookies),
		chromedp.Navigate(boardURL),
		chromedp.WaitReady("body"),
	}
	if err := chromedp.Run(runCtx, actions...); err != nil {
		tabCancel()
		return "", fmt.Errorf("open board page: %w", err)
	}

	state, err := readPageState(runCtx, d.cfg.Selectors)
	if err != nil {
		tabCancel()
		return "", fmt.Errorf("inspect board page: %w", err)
	}
	if signInRedirect(d.cfg, state.Href) {
		tabCancel()
		return "", fmt.Errorf("board page redirected to sign-in: %w", domain.ErrAuthRequired)
	}
	if state.Missing {
		tabCancel()
		return "", fmt.Errorf("board page reports a missing board: %w", domain.ErrBoardNotFound)
	}

	handle := ports.SessionHandle(fmt.Sprintf("session-%s", uuid.New().String()[:8]))

	d.mu.Lock()
	d.sessions[handle] = &session{ctx: tabCtx, cancel: tabCancel}
	d.mu.Unlock()

	return handle, nil
}

// Submit types the question into the composer and sends it with Enter.
// The send button is clicked afterwards as well; some composer variants
// treat Enter as a newline instead of a submit.
func (d *Driver) Submit(ctx context.Context, handle ports.SessionHandle, text string) error {
	sess, err := d.session(handle)
	if err != nil {
		return err
	}

	runCtx, cancel := opContext(ctx, sess.ctx, d.cfg.ActionTimeout)
	defer cancel()

	sel := d.cfg.Selectors
	err = chromedp.Run(runCtx,
		chromedp.WaitVisible(sel.Composer),
		chromedp.Clear(sel.Composer),
		chromedp.SendKeys(sel.Composer, text),
		chromedp.SendKeys(sel.Composer, kb.Enter),
	)
	if err != nil {
		return fmt.Errorf("submit question: %w", err)
	}

	clickCtx, clickCancel := opContext(ctx, sess.ctx, sendClickTimeout)
	defer clickCancel()
	_ = chromedp.Run(clickCtx, chromedp.Click(sel.Send))

	return nil
}

// Read captures the current answer text together with the busy and
// failure indicators in a single page evaluation.
func (d *Driver) Read(ctx context.Context, handle ports.SessionHandle) (domain.Snapshot, error) {
	sess, err := d.session(handle)
	if err != nil {
		return domain.Snapshot{}, err
	}

	runCtx, cancel := opContext(ctx, sess.ctx, d.cfg.ActionTimeout)
	defer cancel()

	state, err := readPageState(runCtx, d.cfg.Selectors)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read conversation state: %w", err)
	}
	if signInRedirect(d.cfg, state.Href) {
		return domain.Snapshot{}, fmt.Errorf("session redirected to sign-in: %w", domain.ErrAuthRequired)
	}

	return domain.Snapshot{
		Text:       state.Text,
		InProgress: state.Busy,
		Errored:    state.Failed,
	}, nil
}

// Close tears down the tab behind handle. Unknown handles are ignored
// so callers can close unconditionally.
func (d *Driver) Close(handle ports.SessionHandle) error {
	d.mu.Lock()
	sess, ok := d.sessions[handle]
	if ok {
		delete(d.sessions, handle)
	}
	d.mu.Unlock()

	if ok {
		sess.cancel()
	}

	return nil
}

// Shutdown closes every open session and the browser process.
func (d *Driver) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	sessions := d.sessions
	d.sessions = make(map[ports.SessionHandle]*session)
	d.mu.Unlock()

	for _, sess := range sessions {
		sess.cancel()
	}
	d.allocCancel()
}

func (d *Driver) session(handle ports.SessionHandle) (*session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sess, ok := d.sessions[handle]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", handle)
	}

	return sess, nil
}

func (d *Driver) sessionCookies(ctx context.Context) ([]sessionCookie, error) {
	sessionJSON, err := d.secrets.Get(ctx, d.secretKey)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return nil, fmt.Errorf("no stored session: %w", domain.ErrAuthRequired)
		}
		return nil, fmt.Errorf("load session secret: %w", err)
	}

	cookies, err := cookiesFromJSON(sessionJSON)
	if err != nil {
		return nil, fmt.Errorf("stored session is unreadable: %w", domain.ErrAuthRequired)
	}

	return cookies, nil
}

// signInRedirect reports whether href points at a sign-in surface
// instead of a board page. Leaving the board site entirely counts as a
// redirect too; expired sessions bounce through third-party identity
// hosts.
func signInRedirect(cfg Config, href string) bool {
	if href == "" {
		return false
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Host)
	for _, signIn := range cfg.SignInHosts {
		if host == strings.ToLower(signIn) {
			return true
		}
	}
	if base := hostOf(cfg.BaseURL); base != "" && !sameSite(host, base) {
		return true
	}

	path := strings.ToLower(parsed.Path)
	for _, marker := range []string{"sign-in", "signin", "login"} {
		if strings.Contains(path, marker) {
			return true
		}
	}

	return false
}

func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(parsed.Host)
}

func sameSite(host, base string) bool {
	return host == base || strings.HasSuffix(host, "."+base)
}

// pageState is one atomic observation of the conversation surface.
type pageState struct {
	Text    string `json:"text"`
	Busy    bool   `json:"busy"`
	Failed  bool   `json:"failed"`
	Missing bool   `json:"missing"`
	Href    string `json:"href"`
}

const readStateTemplate = `(function (sel) {
	function last(q) {
		if (!q) { return null; }
		var els = document.querySelectorAll(q);
		return els.length ? els[els.length - 1] : null;
	}
	function present(q) { return q ? !!document.querySelector(q) : false; }
	var answer = last(sel.answer);
	return {
		text: answer ? answer.innerText : "",
		busy: present(sel.busy),
		failed: present(sel.failure),
		missing: present(sel.missing),
		href: window.location.href
	};
})(%s)`

func readPageState(ctx context.Context, sel Selectors) (pageState, error) {
	args, err := json.Marshal(map[string]string{
		"answer":  sel.Answer,
		"busy":    sel.Busy,
		"failure": sel.Failure,
		"missing": sel.Missing,
	})
	if err != nil {
		return pageState{}, fmt.Errorf("encode selectors: %w", err)
	}

	var state pageState
	expr := fmt.Sprintf(readStateTemplate, args)
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &state)); err != nil {
		return pageState{}, err
	}

	return state, nil
}

// opContext bounds one browser operation by both the tab lifetime and
// the caller's context.
func opContext(ctx, tabCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)

	return runCtx, func() {
		stop()
		cancel()
	}
}
