package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
	"github.com/ohmynofan/drops-autoclaimer/internal/platform/logger"
)

type Options struct {
	ChromePath string
	UserAgent  string
	ProxyURL   string
	Headless   bool
}

// Browser is one Chrome process on a throwaway profile. Every page the
// claimer drives is a Surface (a tab) of this process.
type Browser struct {
	opts        Options
	profileDir  string
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	log         *logger.ClassLogger
	closeOnce   sync.Once
}

func Launch(opts Options) (*Browser, error) {
	profileDir, err := os.MkdirTemp("", "autoclaimer-profile-*")
	if err != nil {
		return nil, fmt.Errorf("create browser profile failed: %w", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts, profileDir)...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	b := &Browser{
		opts:        opts,
		profileDir:  profileDir,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
	}
	b.log = logger.NewLogger(b, nil)

	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to start Chrome: %w", err)
	}
	b.log.JustLog(fmt.Sprintf("Chrome started, headless=%t profile=%s", opts.Headless, profileDir))
	return b, nil
}

func allocatorOptions(opts Options, profileDir string) []chromedp.ExecAllocatorOption {
	options := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		chromedp.WindowSize(1280, 720),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
	)
	if !opts.Headless {
		options = append(options, chromedp.Flag("headless", false))
	}
	if opts.ChromePath != "" {
		options = append(options, chromedp.ExecPath(opts.ChromePath))
	}
	if opts.UserAgent != "" {
		options = append(options, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ProxyURL != "" {
		options = append(options, chromedp.ProxyServer(opts.ProxyURL))
	}
	return options
}

// OpenSurface opens a new tab.
func (b *Browser) OpenSurface(ctx context.Context) (*Surface, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.ctx)

	// The first Run binds the tab to its context, so it must be tabCtx.
	stop := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx, network.Enable())
	stop()
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("open surface failed: %w", err)
	}
	return &Surface{ctx: tabCtx, cancel: tabCancel}, nil
}

func (b *Browser) Cookies(ctx context.Context, urls ...string) ([]model.Cookie, error) {
	return readCookies(ctx, b.ctx, urls)
}

func (b *Browser) SetCookies(ctx context.Context, cookies []model.Cookie) error {
	return writeCookies(ctx, b.ctx, cookies)
}

// RemoveCookies deletes every cookie the browser would send to rawURL.
func (b *Browser) RemoveCookies(ctx context.Context, rawURL string) error {
	cookies, err := readCookies(ctx, b.ctx, []string{rawURL})
	if err != nil {
		return err
	}
	return runBound(ctx, b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			if err := network.DeleteCookies(c.Name).
				WithDomain(c.Domain).
				WithPath(c.Path).
				Do(ctx); err != nil {
				return fmt.Errorf("delete cookie %s failed: %w", c.Name, err)
			}
		}
		return nil
	}))
}

func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		b.cancel()
		b.allocCancel()
		if err := os.RemoveAll(b.profileDir); err != nil {
			b.log.JustLog(fmt.Sprintf("failed to remove profile %s: %v", b.profileDir, err))
		}
	})
	return nil
}

// runBound runs actions on the tab of tabCtx, aborting when ctx ends. The
// tab itself outlives ctx.
func runBound(ctx, tabCtx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func readCookies(ctx, tabCtx context.Context, urls []string) ([]model.Cookie, error) {
	var result []model.Cookie
	err := runBound(ctx, tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := cookieQuery(urls).Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			result = append(result, fromNetworkCookie(c))
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("read cookies failed: %w", err)
	}
	return result, nil
}

// cookieQuery asks for the cookies sent to urls, or all of the tab's
// cookies when urls is empty.
func cookieQuery(urls []string) *network.GetCookiesParams {
	q := network.GetCookies()
	if len(urls) > 0 {
		q = q.WithUrls(urls)
	}
	return q
}

func writeCookies(ctx, tabCtx context.Context, cookies []model.Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, toCookieParam(c))
	}
	err := runBound(ctx, tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("write cookies failed: %w", err)
	}
	return nil
}

func fromNetworkCookie(c *network.Cookie) model.Cookie {
	out := model.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if !c.Session && c.Expires > 0 {
		sec := int64(c.Expires)
		nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
		out.Expires = time.Unix(sec, nsec)
	}
	return out
}

func toCookieParam(c model.Cookie) *network.CookieParam {
	param := &network.CookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if param.Path == "" {
		param.Path = "/"
	}
	if !c.Expires.IsZero() {
		expires := cdp.TimeSinceEpoch(c.Expires)
		param.Expires = &expires
	}
	return param
}

// cookieKey identifies a cookie the way the browser does.
func cookieKey(c model.Cookie) string {
	return strings.TrimPrefix(strings.ToLower(c.Domain), ".") + "|" + c.Path + "|" + c.Name
}
