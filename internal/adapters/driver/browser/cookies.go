package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// sessionCookie is the stored form of one browser cookie. A session
// secret is a JSON array of these.
type sessionCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

func cookiesFromJSON(sessionJSON string) ([]sessionCookie, error) {
	var cookies []sessionCookie
	if err := json.Unmarshal([]byte(sessionJSON), &cookies); err != nil {
		return nil, fmt.Errorf("decode session cookies: %w", err)
	}

	return cookies, nil
}

func cookiesToJSON(cookies []sessionCookie) (string, error) {
	data, err := json.Marshal(cookies)
	if err != nil {
		return "", fmt.Errorf("encode session cookies: %w", err)
	}

	return string(data), nil
}

func fromNetworkCookies(cookies []*network.Cookie) []sessionCookie {
	out := make([]sessionCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, sessionCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	return out
}

// setCookiesAction restores stored cookies into the current browser
// before navigation.
func setCookiesAction(cookies []sessionCookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			path := c.Path
			if path == "" {
				path = "/"
			}

			params := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly)
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				params = params.WithExpires(&expires)
			}
			if c.SameSite != "" {
				params = params.WithSameSite(network.CookieSameSite(c.SameSite))
			}

			if err := params.Do(ctx); err != nil {
				return fmt.Errorf("set cookie %q: %w", c.Name, err)
			}
		}

		return nil
	})
}

// collectCookiesAction exports all browser cookies into out.
func collectCookiesAction(out *[]sessionCookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return fmt.Errorf("export cookies: %w", err)
		}

		*out = fromNetworkCookies(cookies)

		return nil
	})
}
