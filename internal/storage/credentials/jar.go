package credentials

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ohmynofan/drops-autoclaimer/internal/domain/model"
)

// Jar is the file-backed credential store. Cookies are grouped by the
// canonical domain they were issued for.
type Jar struct {
	mu      sync.Mutex
	path    string
	cookies map[string][]model.Cookie
	now     func() time.Time
}

func Open(path string) (*Jar, error) {
	jar := &Jar{
		path:    path,
		cookies: make(map[string][]model.Cookie),
		now:     time.Now,
	}
	if err := jar.load(); err != nil {
		return nil, fmt.Errorf("failed to load credential jar: %w", err)
	}
	return jar, nil
}

// Put stores or replaces cookies. Expired cookies delete their stored copy.
func (j *Jar) Put(cookies []model.Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(cookies) == 0 {
		return nil
	}

	now := j.now()
	for _, c := range cookies {
		key := canonicalHost(strings.TrimPrefix(c.Domain, "."))
		if key == "" {
			continue
		}
		list := j.cookies[key]
		updated := false
		for i, existing := range list {
			if existing.Name == c.Name && normalizePath(existing.Path) == normalizePath(c.Path) {
				if isExpired(c, now) {
					list = append(list[:i], list[i+1:]...)
				} else {
					list[i] = c
				}
				updated = true
				break
			}
		}
		if !updated && !isExpired(c, now) {
			list = append(list, c)
		}
		if len(list) == 0 {
			delete(j.cookies, key)
			continue
		}
		j.cookies[key] = list
	}

	return j.save()
}

// Cookies returns the unexpired cookies that apply to rawURL.
func (j *Jar) Cookies(rawURL string) []model.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	host := canonicalHost(u.Host)
	reqPath := u.Path
	if reqPath == "" {
		reqPath = "/"
	}

	now := j.now()
	var result []model.Cookie
	for domain, list := range j.cookies {
		if !domainMatches(host, domain) {
			continue
		}
		for _, c := range list {
			if isExpired(c, now) || !cookiePathMatch(c.Path, reqPath) {
				continue
			}
			result = append(result, c)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Name < result[b].Name })
	return result
}

// All returns every unexpired cookie in the jar.
func (j *Jar) All() []model.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	var result []model.Cookie
	for _, list := range j.cookies {
		for _, c := range list {
			if !isExpired(c, now) {
				result = append(result, c)
			}
		}
	}
	return result
}

// Remove drops every cookie that would be sent to rawURL.
func (j *Jar) Remove(rawURL string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid credential url %q", rawURL)
	}
	host := canonicalHost(u.Host)
	for domain := range j.cookies {
		if domainMatches(host, domain) {
			delete(j.cookies, domain)
		}
	}
	return j.save()
}

func (j *Jar) HasCookies() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, list := range j.cookies {
		if len(list) > 0 {
			return true
		}
	}
	return false
}

func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = make(map[string][]model.Cookie)
	if j.path != "" {
		if err := os.Remove(j.path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (j *Jar) load() error {
	if j.path == "" {
		return nil
	}
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var stored map[string][]model.Cookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}
	for domain, list := range stored {
		j.cookies[canonicalHost(domain)] = append(j.cookies[canonicalHost(domain)], list...)
	}
	return nil
}

func (j *Jar) save() error {
	if j.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(j.cookies, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(j.path, data, 0o600)
}

func canonicalHost(host string) string {
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

func domainMatches(host, domain string) bool {
	host = canonicalHost(host)
	domain = canonicalHost(domain)
	if host == domain {
		return true
	}
	return strings.HasSuffix(host, "."+domain)
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func cookiePathMatch(cookiePath, reqPath string) bool {
	return strings.HasPrefix(reqPath, normalizePath(cookiePath))
}

func isExpired(c model.Cookie, now time.Time) bool {
	return !c.Expires.IsZero() && c.Expires.Before(now)
}
