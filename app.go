package jokebox

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/devmarvs/jokebox/apperr"
	"github.com/devmarvs/jokebox/config"
	"github.com/devmarvs/jokebox/logging"
	"github.com/go-chi/chi/v5"
)

// Handler handles a request and returns an error for centralized handling.
type Handler func(*Context) error

// Middleware wraps a handler with additional behavior.
type Middleware func(Handler) Handler

// ErrorHandler processes errors returned by handlers.
type ErrorHandler func(*Context, error)

// App is the main framework entrypoint. Routing is delegated to chi; route
// patterns use chi syntax, e.g. /jokes/{jokeId}.
type App struct {
	mux          *chi.Mux
	middleware   []Middleware
	logger       *slog.Logger
	config       config.Config
	errorHandler ErrorHandler
}

// Option customizes the app instance.
type Option func(*App)

// New creates a new App with defaults.
func New(options ...Option) *App {
	app := &App{
		mux:          chi.NewRouter(),
		config:       config.Default(),
		errorHandler: DefaultErrorHandler,
	}

	for _, opt := range options {
		opt(app)
	}

	if app.logger == nil {
		app.logger = logging.NewLogger(logging.Options{Level: app.config.LogLevel, Format: app.config.LogFormat})
	}

	app.mux.NotFound(app.serve(func(*Context) error {
		return apperr.NotFound("not found", nil)
	}, nil))
	app.mux.MethodNotAllowed(app.serve(func(*Context) error {
		return apperr.New(apperr.CodeNotAllowed, http.StatusMethodNotAllowed, "method not allowed", nil)
	}, nil))

	return app
}

// WithConfig overrides the default config.
func WithConfig(cfg config.Config) Option {
	return func(app *App) {
		app.config = cfg
	}
}

// WithLogger uses a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(app *App) {
		app.logger = logger
	}
}

// WithErrorHandler overrides the default error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(app *App) {
		app.errorHandler = handler
	}
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Use registers global middleware. It also wraps the not-found and
// method-not-allowed responses.
func (a *App) Use(middleware ...Middleware) {
	a.middleware = append(a.middleware, middleware...)
}

// GET registers a GET route.
func (a *App) GET(path string, handler Handler, middleware ...Middleware) {
	a.handle(http.MethodGet, path, handler, middleware)
}

// POST registers a POST route.
func (a *App) POST(path string, handler Handler, middleware ...Middleware) {
	a.handle(http.MethodPost, path, handler, middleware)
}

// Handle registers a route for an arbitrary method.
func (a *App) Handle(method, path string, handler Handler, middleware ...Middleware) {
	a.handle(method, path, handler, middleware)
}

// Mount attaches a plain http.Handler, such as the metrics exporter.
func (a *App) Mount(path string, handler http.Handler) {
	a.mux.Handle(path, handler)
}

func (a *App) handle(method, path string, handler Handler, middleware []Middleware) {
	a.mux.Method(method, path, a.serve(handler, middleware))
}

func (a *App) serve(handler Handler, middleware []Middleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r, a)

		h := handler
		for i := len(middleware) - 1; i >= 0; i-- {
			h = middleware[i](h)
		}
		for i := len(a.middleware) - 1; i >= 0; i-- {
			h = a.middleware[i](h)
		}

		if err := h(ctx); err != nil {
			a.errorHandler(ctx, err)
		}
	}
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Run starts the server and shuts down when the context is canceled.
func (a *App) Run(ctx context.Context) error {
	server := a.newServer()
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("server starting", slog.String("address", a.config.Address))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// RunWithSignals starts the server and handles SIGINT/SIGTERM for shutdown.
func (a *App) RunWithSignals() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

// DefaultErrorHandler answers redirects with a redirect and every other
// error with a status and message taken from *apperr.Error, or 500.
func DefaultErrorHandler(ctx *Context, err error) {
	if redirect, ok := apperr.AsRedirect(err); ok {
		ctx.Logger().Debug("redirect", slog.String("location", redirect.Location))
		http.Redirect(ctx.ResponseWriter, ctx.Request, redirect.Location, redirect.Status)
		return
	}

	appErr := apperr.As(err)
	status := http.StatusInternalServerError
	code := apperr.CodeInternal
	message := "internal server error"
	var fields map[string]string

	if appErr != nil {
		status = appErr.Status
		code = appErr.Code
		message = appErr.Message
		fields = appErr.Fields
	}

	if status >= http.StatusInternalServerError {
		ctx.Logger().Error("request failed",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	} else {
		ctx.Logger().Debug("request rejected",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
	}

	if wantsJSON(ctx.Request) {
		body := map[string]any{
			"code":    code,
			"message": message,
		}
		if len(fields) > 0 {
			body["fields"] = fields
		}
		_ = ctx.JSON(status, map[string]any{"error": body})
		return
	}

	_ = ctx.Text(status, message)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(strings.ToLower(accept), "application/json")
}

// ShutdownTimeout returns the configured graceful shutdown timeout.
func (a *App) ShutdownTimeout() time.Duration {
	return a.config.ShutdownTimeout
}

func (a *App) newServer() *http.Server {
	return &http.Server{
		Addr:              a.config.Address,
		Handler:           a,
		ReadTimeout:       a.config.ReadTimeout,
		WriteTimeout:      a.config.WriteTimeout,
		IdleTimeout:       a.config.IdleTimeout,
		ReadHeaderTimeout: a.config.ReadHeaderTimeout,
		MaxHeaderBytes:    a.config.MaxHeaderBytes,
	}
}
