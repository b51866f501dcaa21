package jokes

import (
	"net/url"
	"strings"
)

const defaultRedirect = "/jokes"

// safeRedirect returns target when it is a same-site absolute path and
// defaultRedirect otherwise.
func safeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") {
		return defaultRedirect
	}
	if strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return defaultRedirect
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return defaultRedirect
	}
	return target
}
