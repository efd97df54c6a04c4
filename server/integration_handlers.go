package server

import (
	"net/http"

	"github.com/invoiceagent/gateway/integration"
	"github.com/invoiceagent/gateway/integration/handshake"
	interrors "github.com/invoiceagent/gateway/internal/errors"
)

// IntegrationsHandler lists the integrations, first reconciling any
// completed OAuth handshake. The marker is consumed: the redirect outcome is
// applied exactly once, on the first panel load after the callback.
func (s *Server) IntegrationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if marker, ok := s.handshake.Consume(); ok && marker.Connected() {
			if err := s.integrations.SetConnected(integration.KeyZoho, marker.Timestamp); err != nil {
				s.logger.Error().Err(err).Msg("failed to reconcile handshake marker")
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"integrations": s.integrations.List()})
	}
}

// ZohoAuthorizeHandler returns the provider authorization URL the browser
// should navigate to. With no client id configured the caller gets a
// configuration error instead of a malformed authorization request.
func (s *Server) ZohoAuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorizeURL, err := handshake.AuthorizeURL(handshake.Config{
			AuthURL:     s.config.GetOAuthURL(),
			Scopes:      s.config.GetOAuthScopes(),
			ClientID:    s.config.GetOAuthClientID(),
			RedirectURI: s.config.GetOAuthRedirectURI(),
		})
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": authorizeURL})
	}
}

// ConnectHandler simulates an immediate connect for the non-OAuth
// integrations. The zoho integration must go through the authorization
// redirect instead.
func (s *Server) ConnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		connection, err := s.integrations.Get(id)
		if err != nil {
			writeFailure(w, err)
			return
		}
		if connection.UsesOAuth {
			writeFailure(w, interrors.ErrIntegrationUsesOAuth)
			return
		}

		if err := s.integrations.SetConnected(id, "Just now"); err != nil {
			writeFailure(w, err)
			return
		}
		connection, _ = s.integrations.Get(id)
		writeJSON(w, http.StatusOK, connection)
	}
}

func (s *Server) DisconnectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.integrations.SetDisconnected(id); err != nil {
			writeFailure(w, err)
			return
		}
		connection, _ := s.integrations.Get(id)
		writeJSON(w, http.StatusOK, connection)
	}
}
