package credentials

import (
	"context"
	"fmt"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
)

// LiveStore is the cookie store of a running browser.
type LiveStore interface {
	Cookies(ctx context.Context, urls ...string) ([]model.Cookie, error)
	SetCookies(ctx context.Context, cookies []model.Cookie) error
	RemoveCookies(ctx context.Context, rawURL string) error
}

// Mirror keeps the browser's cookie store and the on-disk jar in step.
// Reads go to the browser, writes go to both.
type Mirror struct {
	live LiveStore
	jar  *Jar
}

func NewMirror(live LiveStore, jar *Jar) *Mirror {
	return &Mirror{live: live, jar: jar}
}

func (m *Mirror) Cookies(ctx context.Context, urls ...string) ([]model.Cookie, error) {
	return m.live.Cookies(ctx, urls...)
}

func (m *Mirror) SetCookies(ctx context.Context, cookies []model.Cookie) error {
	if err := m.live.SetCookies(ctx, cookies); err != nil {
		return fmt.Errorf("set browser cookies failed: %w", err)
	}
	if err := m.jar.Put(cookies); err != nil {
		return fmt.Errorf("persist cookies failed: %w", err)
	}
	return nil
}

func (m *Mirror) RemoveCookies(ctx context.Context, rawURL string) error {
	if err := m.live.RemoveCookies(ctx, rawURL); err != nil {
		return fmt.Errorf("remove browser cookies failed: %w", err)
	}
	if err := m.jar.Remove(rawURL); err != nil {
		return fmt.Errorf("remove persisted cookies failed: %w", err)
	}
	return nil
}

// Seed loads the persisted cookies into the browser.
func (m *Mirror) Seed(ctx context.Context) error {
	cookies := m.jar.All()
	if len(cookies) == 0 {
		return nil
	}
	return m.live.SetCookies(ctx, cookies)
}

// Sync replaces the persisted cookies of each platform with the browser's.
func (m *Mirror) Sync(ctx context.Context, platforms []model.Platform) error {
	for _, p := range platforms {
		urls := p.CookieURLs
		if len(urls) == 0 {
			urls = []string{p.ReferenceURL}
		}
		cookies, err := m.live.Cookies(ctx, urls...)
		if err != nil {
			return fmt.Errorf("read %s cookies failed: %w", p.Name, err)
		}
		for _, u := range urls {
			if err := m.jar.Remove(u); err != nil {
				return err
			}
		}
		if err := m.jar.Put(cookies); err != nil {
			return err
		}
	}
	return nil
}
