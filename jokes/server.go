// Package jokes serves the joke catalogue over HTTP: browsing, submitting
// and deleting jokes, plus the login, registration and logout flows.
package jokes

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/devmarvs/jokebox"
	"github.com/devmarvs/jokebox/auth"
	"github.com/devmarvs/jokebox/config"
	"github.com/devmarvs/jokebox/health"
	"github.com/devmarvs/jokebox/metrics"
	"github.com/devmarvs/jokebox/middleware"
	"github.com/devmarvs/jokebox/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// latestLimit is how many jokes the index lists.
const latestLimit = 5

// maxFormBytes bounds request bodies.
const maxFormBytes = 64 << 10

// Options holds the server dependencies. Store, Accessor and Auth are
// required.
type Options struct {
	Store    store.Store
	Accessor *auth.Accessor
	Auth     *auth.Service
	Metrics  *metrics.Registry
	Health   *health.Registry
	// Random returns a value in [0, n). Defaults to math/rand/v2.
	Random func(n int) int
}

// Server implements the HTTP handlers.
type Server struct {
	store    store.Store
	accessor *auth.Accessor
	auth     *auth.Service
	metrics  *metrics.Registry
	health   *health.Registry
	random   func(n int) int
}

// New creates a Server.
func New(options Options) (*Server, error) {
	if options.Store == nil {
		return nil, errors.New("jokes: store is required")
	}
	if options.Accessor == nil {
		return nil, errors.New("jokes: accessor is required")
	}
	if options.Auth == nil {
		return nil, errors.New("jokes: auth service is required")
	}
	random := options.Random
	if random == nil {
		random = rand.IntN
	}
	return &Server{
		store:    options.Store,
		accessor: options.Accessor,
		auth:     options.Auth,
		metrics:  options.Metrics,
		health:   options.Health,
		random:   random,
	}, nil
}

// Register attaches every route to app.
func (s *Server) Register(app *jokebox.App) {
	if s.health != nil {
		app.GET("/health", func(ctx *jokebox.Context) error {
			s.health.Handler().ServeHTTP(ctx.ResponseWriter, ctx.Request)
			return nil
		})
		app.GET("/ready", func(ctx *jokebox.Context) error {
			s.health.ReadyHandler().ServeHTTP(ctx.ResponseWriter, ctx.Request)
			return nil
		})
	}
	if s.metrics != nil {
		app.Mount("/metrics", s.metrics.Handler())
	}

	app.GET("/", s.home)
	app.GET("/login", s.loginPage)
	app.POST("/login", s.login)
	app.GET("/logout", s.logoutPage)
	app.POST("/logout", s.logout)

	jokes := app.Group("/jokes")
	jokes.GET("", s.jokesIndex)
	jokes.GET("/new", s.newJokePage)
	jokes.POST("/new", s.createJoke)
	jokes.GET("/{jokeId}", s.showJoke)
	jokes.POST("/{jokeId}", s.jokeAction)
}

// AppOptions configures NewApp.
type AppOptions struct {
	Config config.Config
	Logger *slog.Logger
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
	Server         Options
}

// NewApp builds the application with the standard middleware chain and
// every route registered.
func NewApp(options AppOptions) (*jokebox.App, error) {
	server, err := New(options.Server)
	if err != nil {
		return nil, err
	}

	appOptions := []jokebox.Option{jokebox.WithConfig(options.Config)}
	if options.Logger != nil {
		appOptions = append(appOptions, jokebox.WithLogger(options.Logger))
	}
	app := jokebox.New(appOptions...)

	provider := options.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	logOptions := middleware.DefaultLoggerOptions()
	logOptions.SkipPaths = []string{"/health", "/ready"}

	app.Use(
		middleware.RequestID(),
		middleware.Recover(),
		middleware.Trace(provider),
		middleware.Metrics(server.metrics),
		middleware.LoggerWithOptions(logOptions),
		middleware.SecurityHeaders(middleware.SecurityHeadersFromConfig(options.Config)),
		middleware.BodyLimit(maxFormBytes),
	)
	server.Register(app)
	return app, nil
}

// currentUser loads the signed-in user. A session naming a user that no
// longer exists is cleared and treated as anonymous.
func (s *Server) currentUser(ctx *jokebox.Context) (*store.User, error) {
	user, err := s.accessor.CurrentUser(ctx.Request.Context(), ctx.Request)
	if errors.Is(err, auth.ErrUnknownUser) {
		ctx.Logger().Info("clearing session for unknown user")
		ctx.SetCookie(s.accessor.Sessions().Destroy())
		return nil, nil
	}
	return user, err
}

func identityOf(user *store.User) *auth.Identity {
	if user == nil {
		return nil
	}
	return &auth.Identity{ID: user.ID, Username: user.Username}
}

func (s *Server) home(ctx *jokebox.Context) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"user": identityOf(user),
		"links": map[string]string{
			"jokes": "/jokes",
			"login": "/login",
		},
	})
}

func badRequest(ctx *jokebox.Context, data actionData) error {
	return ctx.JSON(http.StatusBadRequest, data)
}
