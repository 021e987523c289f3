package model

import (
	"strings"
	"time"
)

// Platform describes one reward platform: where its session lives and which
// cookie proves the user is signed in.
type Platform struct {
	Name         string
	ReferenceURL string
	TokenName    string
	TokenDomain  string
	LoginURL     string
	CookieURLs   []string
}

var (
	Amazon = Platform{
		Name:         "Amazon",
		ReferenceURL: "https://gaming.amazon.com/home",
		TokenName:    "x-main",
		TokenDomain:  "amazon.com",
		CookieURLs:   []string{"https://www.amazon.com", "https://gaming.amazon.com"},
	}
	Twitch = Platform{
		Name:         "Twitch",
		ReferenceURL: "https://www.twitch.tv/drops/campaigns",
		TokenName:    "auth-token",
		TokenDomain:  "twitch.tv",
		LoginURL:     "https://www.twitch.tv/login",
		CookieURLs:   []string{"https://www.twitch.tv"},
	}
	Nintendo = Platform{
		Name:         "Nintendo",
		ReferenceURL: "https://accounts.nintendo.com",
		TokenName:    "NAOPBS",
		TokenDomain:  "nintendo.com",
		LoginURL:     "https://accounts.nintendo.com/login",
		CookieURLs:   []string{"https://accounts.nintendo.com", "https://my.nintendo.com"},
	}
)

// Platforms in dashboard order.
var Platforms = []Platform{Amazon, Twitch, Nintendo}

// PlatformForURL resolves the platform that owns url by its token domain.
func PlatformForURL(url string) (Platform, bool) {
	lower := strings.ToLower(url)
	for _, p := range Platforms {
		if strings.Contains(lower, p.TokenDomain) {
			return p, true
		}
	}
	return Platform{}, false
}

// PlatformByName matches case-insensitively.
func PlatformByName(name string) (Platform, bool) {
	for _, p := range Platforms {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Platform{}, false
}

// Cookie is a credential store entry.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	HTTPOnly bool      `json:"httpOnly"`
}

// CookieChange is a single credential store mutation.
type CookieChange struct {
	Cookie  Cookie
	Removed bool
}
