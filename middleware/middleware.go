package middleware

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/devmarvs/jokebox"
	"github.com/devmarvs/jokebox/apperr"
)

// RequestID ensures every request carries an id, reusing a valid
// X-Request-ID from the client.
func RequestID() jokebox.Middleware {
	return func(next jokebox.Handler) jokebox.Handler {
		return func(ctx *jokebox.Context) error {
			requestID := jokebox.RequestIDFromHeader(ctx.Request)
			if !validRequestID(requestID) {
				requestID = jokebox.NewRequestID()
			}
			ctx.ResponseWriter.Header().Set(jokebox.RequestIDHeader, requestID)
			ctx.Request = ctx.Request.WithContext(jokebox.WithRequestID(ctx.Request.Context(), requestID))
			return next(ctx)
		}
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// Recover converts panics into internal errors.
func Recover() jokebox.Middleware {
	return func(next jokebox.Handler) jokebox.Handler {
		return func(ctx *jokebox.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = apperr.Internal("panic", fmt.Errorf("%v", rec))
				}
			}()
			return next(ctx)
		}
	}
}

// Logger logs request/response details.
func Logger() jokebox.Middleware {
	return LoggerWithOptions(DefaultLoggerOptions())
}

// LoggerOptions configures access logging.
type LoggerOptions struct {
	Fields     []LogField
	Message    string
	SkipPaths  []string
	ErrorLevel bool
	Sampler    Sampler
	SampleRate float64
}

// DefaultLoggerOptions returns default logging options.
func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		Fields:     DefaultLogFields(),
		Message:    "request completed",
		SampleRate: 1,
	}
}

// LoggerWithOptions logs requests using the provided options.
func LoggerWithOptions(options LoggerOptions) jokebox.Middleware {
	options = normalizeLoggerOptions(options)

	return func(next jokebox.Handler) jokebox.Handler {
		return func(ctx *jokebox.Context) error {
			if shouldSkipPath(ctx.Request.URL.Path, options.SkipPaths) {
				return next(ctx)
			}

			start := time.Now()
			recorder := newResponseRecorder(ctx.ResponseWriter)
			ctx.ResponseWriter = recorder

			err := next(ctx)

			status := statusFor(recorder, err)
			if recorder.status == 0 {
				recorder.status = status
			}

			duration := time.Since(start)
			attrs := make([]slog.Attr, 0, len(options.Fields))
			for _, field := range options.Fields {
				attrs = append(attrs, field(ctx, recorder, duration))
			}

			shouldLog := true
			if options.Sampler != nil {
				shouldLog = options.Sampler(ctx)
			}
			if status >= http.StatusInternalServerError {
				shouldLog = true
			}

			if shouldLog && options.ErrorLevel && status >= http.StatusInternalServerError {
				ctx.Logger().Error(options.Message, attrs...)
				return err
			}
			if shouldLog {
				ctx.Logger().Info(options.Message, attrs...)
			}
			return err
		}
	}
}

// shouldSkipPath matches path against SkipPaths entries, which are exact
// paths or prefixes ending in "*". Shared by the logger, metrics and trace
// middleware so operational endpoints can be left out of all three.
func shouldSkipPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if prefix != "" && strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if pattern != "" && path == pattern {
			return true
		}
	}
	return false
}

func normalizeLoggerOptions(options LoggerOptions) LoggerOptions {
	if len(options.Fields) == 0 {
		options.Fields = DefaultLogFields()
	}
	if options.Message == "" {
		options.Message = "request completed"
	}
	if options.Sampler == nil {
		if options.SampleRate == 0 {
			options.SampleRate = 1
		}
		options.Sampler = SampleRate(options.SampleRate)
	}
	return options
}

// statusFor returns the status the error handler will send for err, or the
// written status when the handler succeeded.
func statusFor(recorder *responseRecorder, err error) int {
	if err == nil {
		return recorder.Status()
	}
	if redirect, ok := apperr.AsRedirect(err); ok {
		return redirect.Status
	}
	if appErr := apperr.As(err); appErr != nil {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// responseRecorder captures status and response size.
type responseRecorder struct {
	writer http.ResponseWriter
	status int
	bytes  int
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{writer: w}
}

func (r *responseRecorder) Header() http.Header {
	return r.writer.Header()
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.writer.WriteHeader(status)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.writer.Write(p)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *responseRecorder) Bytes() int {
	return r.bytes
}

func (r *responseRecorder) Flush() {
	if flusher, ok := r.writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.writer.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hijacker.Hijack()
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.writer
}
