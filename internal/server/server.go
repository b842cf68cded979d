package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/auth"
	"github.com/hongminglow/fincontrol-be/internal/config"
	"github.com/hongminglow/fincontrol-be/internal/http/handlers"
	"github.com/hongminglow/fincontrol-be/internal/middleware"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// Store is everything the API persists.
type Store interface {
	storage.Ledger
	storage.UserStore
	storage.AdminStore
}

// Deps are the collaborators the routes are built from. Health may be nil.
type Deps struct {
	Store    Store
	Health   handlers.Pinger
	Advisor  handlers.Advisor
	Exporter handlers.Exporter
	Logger   *zap.SugaredLogger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// Handler builds the routed handler with CORS and request logging applied.
func Handler(cfg config.Config, deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authn := middleware.NewAuthenticator(tokens, deps.Store.Profiles(), cfg.AdminEmail, log)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), deps.Health).Register(mux)
	handlers.NewAuthHandler(deps.Store, deps.Store.Profiles(), tokens, cfg.AdminEmail, log).Register(mux)
	handlers.NewProfileHandler(deps.Store.Profiles(), cfg.AdminEmail, authn.RequireUser, log).Register(mux)
	handlers.NewLedgerHandler(deps.Store, authn.RequireUser, log).Register(mux)
	handlers.NewAdminHandler(deps.Store, deps.Store, cfg.AdminEmail, authn.RequireAdmin, log).Register(mux)
	handlers.NewAdviceHandler(deps.Advisor, authn.RequireUser).Register(mux)
	handlers.NewExportHandler(deps.Exporter, authn.RequireUser, log).Register(mux)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
