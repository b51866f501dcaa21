// Package security builds response security policies.
package security

import "strings"

// CSP builds a Content-Security-Policy header value. Directives render in
// the order they were first set.
type CSP struct {
	directives map[string][]string
	order      []string
}

// NewCSP creates a CSP builder.
func NewCSP() *CSP {
	return &CSP{directives: make(map[string][]string)}
}

// APIPolicy is the policy for responses that are never rendered as pages:
// nothing may load, frame or submit.
func APIPolicy() *CSP {
	return NewCSP().
		DefaultSrc("'none'").
		FrameAncestors("'none'").
		FormAction("'self'")
}

// Set replaces a directive with the provided values.
func (c *CSP) Set(directive string, values ...string) *CSP {
	if c == nil {
		return nil
	}
	directive = strings.ToLower(strings.TrimSpace(directive))
	if directive == "" {
		return c
	}
	if c.directives == nil {
		c.directives = make(map[string][]string)
	}
	if _, ok := c.directives[directive]; !ok {
		c.order = append(c.order, directive)
	}
	c.directives[directive] = filterValues(values)
	return c
}

// DefaultSrc sets the default-src directive.
func (c *CSP) DefaultSrc(values ...string) *CSP {
	return c.Set("default-src", values...)
}

// FrameAncestors sets the frame-ancestors directive.
func (c *CSP) FrameAncestors(values ...string) *CSP {
	return c.Set("frame-ancestors", values...)
}

// FormAction sets the form-action directive.
func (c *CSP) FormAction(values ...string) *CSP {
	return c.Set("form-action", values...)
}

// String returns the policy string.
func (c *CSP) String() string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, len(c.order))
	for _, directive := range c.order {
		values := c.directives[directive]
		if len(values) == 0 {
			parts = append(parts, directive)
			continue
		}
		parts = append(parts, directive+" "+strings.Join(values, " "))
	}
	return strings.Join(parts, "; ")
}

func filterValues(values []string) []string {
	filtered := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	return filtered
}
