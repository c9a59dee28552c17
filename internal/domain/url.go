package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Board URLs may carry a material-id/craft-id query parameter that scopes
// the conversation to one piece of material. Queries default to the
// board-level URL; the context id is kept only on explicit caller intent.

func isContextParam(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "material-id", "craft-id":
		return true
	default:
		return false
	}
}

// HasContextID reports whether the URL carries a material/craft context id.
func HasContextID(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}

	for key := range u.Query() {
		if isContextParam(key) {
			return true
		}
	}

	return false
}

// StripContextIDs removes material-id/craft-id parameters and the fragment
// while keeping every other query parameter in place. Unparseable input is
// returned unchanged.
func StripContextIDs(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil {
		return rawURL
	}

	u.RawQuery = stripQueryContext(u.RawQuery)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

func stripQueryContext(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	kept := make([]string, 0)
	for _, part := range strings.Split(rawQuery, "&") {
		key := part
		if i := strings.Index(part, "="); i >= 0 {
			key = part[:i]
		}
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if isContextParam(key) {
			continue
		}
		kept = append(kept, part)
	}

	return strings.Join(kept, "&")
}

// NormalizeBoardURL produces the canonical form used for identity
// comparisons: lowercased scheme/host, no context ids, no fragment, no
// trailing slash.
func NormalizeBoardURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("url is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url has no host")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = stripQueryContext(u.RawQuery)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// BoardURLSuffix returns up to eight characters of the last path segment,
// used for placeholder names when discovery yields nothing usable.
func BoardURLSuffix(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		trimmed = u.Path
	}

	trimmed = strings.TrimRight(trimmed, "/")
	segments := strings.Split(trimmed, "/")
	last := segments[len(segments)-1]
	if len(last) > 8 {
		last = last[:8]
	}

	return last
}

var (
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
	dashRun    = regexp.MustCompile(`-+`)
)

// Slugify derives a board id from a display name.
func Slugify(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = nonSlugRun.ReplaceAllString(slug, "-")
	slug = dashRun.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "board"
	}

	return slug
}
