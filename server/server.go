// Package server is the HTTP surface of the InvoiceAgent gateway: the auth
// flows, the integrations panel, the OAuth callback entry point, and the
// mock dashboard data behind the route guard.
package server

import (
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/invoiceagent/gateway/identity"
	"github.com/invoiceagent/gateway/integration"
	"github.com/invoiceagent/gateway/integration/handshake"
	"github.com/invoiceagent/gateway/internal/config"
	"github.com/invoiceagent/gateway/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Deps holds the wired components the handlers delegate to.
type Deps struct {
	Identity     *identity.Service
	Sessions     *session.Store
	Integrations integration.Repo
	Handshake    *handshake.Handshake
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config config.Config
	logger zerolog.Logger

	identity     *identity.Service
	sessions     *session.Store
	guard        session.Guard
	integrations integration.Repo
	handshake    *handshake.Handshake

	verifierOnce sync.Once
	verifier     *oidc.IDTokenVerifier
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Identity == nil {
		return nil, errors.New("[Server New] identity service is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("[Server New] session store is required")
	}
	if deps.Integrations == nil {
		return nil, errors.New("[Server New] integrations repo is required")
	}
	if deps.Handshake == nil {
		return nil, errors.New("[Server New] handshake is required")
	}

	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		config:       cfg,
		logger:       log.With().Str("component", "server").Logger(),
		identity:     deps.Identity,
		sessions:     deps.Sessions,
		guard:        session.NewGuard(deps.Sessions),
		integrations: deps.Integrations,
		handshake:    deps.Handshake,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logger.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.logger.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}
