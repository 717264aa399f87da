package contract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/huangsam/pagepulse/schema"
)

// explicitScheme matches a scheme at the start of the input only, so a URL
// carried in a query parameter does not count as one.
var explicitScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// NormalizeURL validates a user-supplied site address and returns its canonical form.
// A missing scheme defaults to https and any fragment is dropped.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", schema.NewError(schema.KindInvalidInput, "url is required")
	}

	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if explicitScheme.MatchString(trimmed) {
			return "", schema.NewError(schema.KindInvalidInput, "url scheme must be http or https")
		}
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", schema.WrapError(schema.KindInvalidInput, "invalid url", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", schema.NewError(schema.KindInvalidInput, "url scheme must be http or https")
	}
	if u.Hostname() == "" {
		return "", schema.NewError(schema.KindInvalidInput, "url host is required")
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}
