// Package server implements the storefront HTTP API: catalog reads, seeding,
// registration, login and the bearer-protected profile.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/catalog"
	"github.com/hay-kot/shopcart/internal/core/config"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "ShopCart API"

// Options configures a Server.
type Options struct {
	Addr           string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	BcryptCost     int
	LoginRate      time.Duration
	LoginBurst     int
	// SeedProducts are inserted by POST /api/seed. Defaults to the demo catalog.
	SeedProducts []catalog.Product
}

// OptionsFromConfig maps the server section of cfg onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:           cfg.Server.Addr,
		JWTSecret:      cfg.Server.JWTSecret,
		TokenTTL:       cfg.Server.TokenTTL,
		AllowedOrigins: cfg.AllowedOrigins(),
		BcryptCost:     cfg.Server.BcryptCost,
		LoginRate:      cfg.Server.LoginRate,
		LoginBurst:     cfg.Server.LoginBurst,
	}
}

// Server serves the storefront API.
type Server struct {
	opts         Options
	products     catalog.Store
	users        account.Store
	tokens       *TokenIssuer
	loginLimiter *ipLimiter
	logger       zerolog.Logger
	now          func() time.Time
}

// New creates a server over the given stores.
func New(opts Options, products catalog.Store, users account.Store, logger zerolog.Logger) (*Server, error) {
	tokens, err := NewTokenIssuer(opts.JWTSecret, opts.TokenTTL)
	if err != nil {
		return nil, err
	}

	if opts.SeedProducts == nil {
		opts.SeedProducts = catalog.DemoProducts()
	}
	if opts.LoginRate <= 0 {
		opts.LoginRate = 6 * time.Second
	}
	if opts.LoginBurst < 1 {
		opts.LoginBurst = 5
	}

	return &Server{
		opts:         opts,
		products:     products,
		users:        users,
		tokens:       tokens,
		loginLimiter: newIPLimiter(opts.LoginRate, opts.LoginBurst),
		logger:       logger.With().Str("component", "server").Logger(),
		now:          time.Now,
	}, nil
}

// Handler returns the API routes with logging, recovery and CORS applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogging()...)
	r.Use(s.recoverer)
	r.Use(s.originGuard)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return s.originAllowed(origin)
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           600,
	}))

	r.Get("/", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/seed", s.handleSeed)
		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Post("/auth/register", s.handleRegister)
		r.With(s.throttleLogin).Post("/auth/login", s.handleLogin)
		r.With(s.requireBearer).Get("/profile", s.handleProfile)
	})

	notFound := func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Route not found")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("API running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// originAllowed reports whether a browser origin may call the API. An empty
// origin (curl, the CLI) is always allowed.
func (s *Server) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	return slices.Contains(s.opts.AllowedOrigins, strings.TrimRight(origin, "/"))
}
