package middleware

import (
	"strconv"

	"github.com/devmarvs/jokebox"
	"github.com/devmarvs/jokebox/config"
)

// SecurityHeadersOptions lists the security headers written on every
// response. Empty values are not sent.
type SecurityHeadersOptions struct {
	ContentTypeOptions      string
	FrameOptions            string
	ReferrerPolicy          string
	ContentSecurityPolicy   string
	StrictTransportSecurity string
}

// DefaultSecurityHeaders returns the headers that do not depend on config.
func DefaultSecurityHeaders() SecurityHeadersOptions {
	return SecurityHeadersOptions{
		ContentTypeOptions: "nosniff",
		FrameOptions:       "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
}

// SecurityHeadersFromConfig adds the configured CSP to the defaults, and
// HSTS when running in production with a positive max age.
func SecurityHeadersFromConfig(cfg config.Config) SecurityHeadersOptions {
	options := DefaultSecurityHeaders()
	options.ContentSecurityPolicy = cfg.Security.ContentSecurityPolicy
	if cfg.IsProduction() && cfg.Security.HSTSMaxAge > 0 {
		options.StrictTransportSecurity = hstsValue(cfg.Security)
	}
	return options
}

func hstsValue(sec config.Security) string {
	value := "max-age=" + strconv.FormatInt(int64(sec.HSTSMaxAge.Seconds()), 10)
	if sec.HSTSIncludeSubdomains {
		value += "; includeSubDomains"
	}
	return value
}

// SecurityHeaders sets the given security headers before calling next.
func SecurityHeaders(options SecurityHeadersOptions) jokebox.Middleware {
	var headers [][2]string
	for _, header := range [][2]string{
		{"X-Content-Type-Options", options.ContentTypeOptions},
		{"X-Frame-Options", options.FrameOptions},
		{"Referrer-Policy", options.ReferrerPolicy},
		{"Content-Security-Policy", options.ContentSecurityPolicy},
		{"Strict-Transport-Security", options.StrictTransportSecurity},
	} {
		if header[1] != "" {
			headers = append(headers, header)
		}
	}

	return func(next jokebox.Handler) jokebox.Handler {
		return func(ctx *jokebox.Context) error {
			out := ctx.ResponseWriter.Header()
			for _, header := range headers {
				out.Set(header[0], header[1])
			}
			return next(ctx)
		}
	}
}
