package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL checks that urlStr is an absolute http or https URL
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// Normalize trims whitespace and validates the result
func Normalize(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if err := ValidateURL(urlStr); err != nil {
		return "", err
	}
	return urlStr, nil
}

// ResolveURL resolves a possibly-relative href against base.
// Absolute http(s) URLs are returned unchanged.
func ResolveURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	href = strings.TrimSpace(href)
	u, err := url.Parse(href)
	if err != nil {
		u, err = url.Parse(repairHref(href))
	}
	if err != nil {
		u = &url.URL{Path: href}
	}
	if u.IsAbs() {
		return u.String()
	}
	return baseURL.ResolveReference(u).String()
}

// repairHref percent-encodes what browsers tolerate in an href but
// url.Parse rejects: stray '%' signs, spaces and control characters.
func repairHref(href string) string {
	var b strings.Builder
	for i := 0; i < len(href); i++ {
		c := href[i]
		switch {
		case c == '%' && (i+2 >= len(href) || !isHex(href[i+1]) || !isHex(href[i+2])):
			b.WriteString("%25")
		case c <= ' ' || c == 0x7f:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// Host returns the lowercased host of urlStr, or "" if it cannot be parsed
func Host(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
