package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
)

// respond answers a script evaluated on a page currently showing url.
type respond func(url, script string) (string, error)

type fakeBrowser struct {
	mu          sync.Mutex
	respond     respond
	surfaces    []*fakeSurface
	navigations []string
	auth        *fakeAuthWindow
	authURL     string
}

func newFakeBrowser(fn respond) *fakeBrowser {
	return &fakeBrowser{respond: fn}
}

func (b *fakeBrowser) OpenSurface(ctx context.Context) (Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &fakeSurface{browser: b, url: "about:blank"}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

func (b *fakeBrowser) OpenAuthWindow(_ context.Context, loginURL string, _ []string) (AuthWindow, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authURL = loginURL
	if b.auth == nil {
		return nil, errors.New("no auth window")
	}
	return b.auth, nil
}

func (b *fakeBrowser) navigated(url string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range b.navigations {
		if n == url {
			return true
		}
	}
	return false
}

func (b *fakeBrowser) lastNavigation() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.navigations) == 0 {
		return ""
	}
	return b.navigations[len(b.navigations)-1]
}

func (b *fakeBrowser) openSurfaces() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	open := 0
	for _, s := range b.surfaces {
		if !s.isClosed() {
			open++
		}
	}
	return open
}

type fakeSurface struct {
	browser *fakeBrowser
	mu      sync.Mutex
	url     string
	history []string
	closed  bool
}

func (s *fakeSurface) Navigate(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.url = rawURL
	s.history = append(s.history, rawURL)
	s.mu.Unlock()

	s.browser.mu.Lock()
	s.browser.navigations = append(s.browser.navigations, rawURL)
	s.browser.mu.Unlock()
	return nil
}

func (s *fakeSurface) Reload(ctx context.Context) error {
	return ctx.Err()
}

func (s *fakeSurface) Evaluate(ctx context.Context, script string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := s.browser.respond(s.current(), script)
	if err != nil {
		return err
	}
	if out == nil || raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *fakeSurface) Location(context.Context) (string, error) {
	return s.current(), nil
}

func (s *fakeSurface) ExpectNavigation(func(string) bool) (<-chan string, func()) {
	return make(chan string), func() {}
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSurface) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *fakeSurface) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeAuthWindow struct {
	changes chan model.CookieChange
	closed  chan struct{}
	cookies []model.Cookie
	scripts []string
	shut    bool
}

func newFakeAuthWindow() *fakeAuthWindow {
	return &fakeAuthWindow{
		changes: make(chan model.CookieChange, 8),
		closed:  make(chan struct{}),
	}
}

func (w *fakeAuthWindow) Changes() <-chan model.CookieChange { return w.changes }
func (w *fakeAuthWindow) Closed() <-chan struct{}           { return w.closed }

func (w *fakeAuthWindow) Cookies(context.Context, ...string) ([]model.Cookie, error) {
	return w.cookies, nil
}

func (w *fakeAuthWindow) Evaluate(_ context.Context, script string, _ any) error {
	w.scripts = append(w.scripts, script)
	return nil
}

func (w *fakeAuthWindow) Close() error {
	w.shut = true
	return nil
}

type fakeCredentials struct {
	mu      sync.Mutex
	cookies []model.Cookie
	err     error
	removed []string
}

func (c *fakeCredentials) Cookies(_ context.Context, urls ...string) ([]model.Cookie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	var out []model.Cookie
	for _, cookie := range c.cookies {
		for _, u := range urls {
			if strings.Contains(u, strings.TrimPrefix(cookie.Domain, ".")) {
				out = append(out, cookie)
				break
			}
		}
	}
	return out, nil
}

func (c *fakeCredentials) SetCookies(_ context.Context, cookies []model.Cookie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies = append(c.cookies, cookies...)
	return nil
}

func (c *fakeCredentials) RemoveCookies(_ context.Context, rawURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = append(c.removed, rawURL)
	kept := c.cookies[:0]
	for _, cookie := range c.cookies {
		if !strings.Contains(rawURL, strings.TrimPrefix(cookie.Domain, ".")) {
			kept = append(kept, cookie)
		}
	}
	c.cookies = kept
	return nil
}

type fakeLock struct {
	mu       sync.Mutex
	held     bool
	acquired int
	released int
}

func (l *fakeLock) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = true
	l.acquired++
	return nil
}

func (l *fakeLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.released++
	return nil
}

func (l *fakeLock) state() (held bool, acquired, released int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held, l.acquired, l.released
}

type fakeHistory struct {
	mu       sync.Mutex
	items    []string
	started  []string
	finished map[string]string
	points   []string
}

func (h *fakeHistory) RecordItem(_, entity, _, status string, _ time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, entity+"="+status)
	return nil
}

func (h *fakeHistory) StartRun(runID, _, reward string, _ time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, reward)
	return nil
}

func (h *fakeHistory) UpdateRunProgress(string, int, int) error {
	return nil
}

func (h *fakeHistory) FinishRun(runID, outcome, _ string, _ time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.finished == nil {
		h.finished = make(map[string]string)
	}
	h.finished[runID] = outcome
	return nil
}

func (h *fakeHistory) RecordPoints(_ time.Time, source, claimed, total string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = append(h.points, source+":"+claimed+"/"+total)
	return nil
}

func (h *fakeHistory) outcome(runID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.finished[runID]
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *fakeNotifier) Notify(_ context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, title+" "+body)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) Emit(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

func (r *recorder) messages() []model.Message {
	var out []model.Message
	for _, ev := range r.all() {
		if m, ok := ev.(model.Message); ok {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) texts() []string {
	var out []string
	for _, m := range r.messages() {
		out = append(out, m.Text)
	}
	return out
}

func countEvents[T model.Event](r *recorder) int {
	n := 0
	for _, ev := range r.all() {
		if _, ok := ev.(T); ok {
			n++
		}
	}
	return n
}

func eventsOf[T model.Event](r *recorder) []T {
	var out []T
	for _, ev := range r.all() {
		if v, ok := ev.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func fastTiming() Timing {
	return Timing{
		PollInterval:        5 * time.Millisecond,
		GraceCheckpoints:    2,
		ExtractionTimeout:   time.Second,
		SourceCheckTimeout:  time.Second,
		ClaimTimeout:        time.Second,
		LoginResolveTimeout: time.Second,
		BlankTimeout:        time.Second,
	}
}

// value wraps v the way a resolved wait comes back from the page.
func value(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return `{"__value":` + string(raw) + `}`
}

func plain(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

const waitTimeout = `{"__timeout":true}`
