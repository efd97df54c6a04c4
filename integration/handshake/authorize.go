package handshake

import (
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	interrors "github.com/invoiceagent/gateway/internal/errors"
)

// Config describes the outbound authorization request for the integration
// provider.
type Config struct {
	AuthURL     string
	Scopes      string
	ClientID    string
	RedirectURI string
}

// AuthorizeURL builds the provider authorization URL: scope, client_id,
// response_type=code, access_type=offline, redirect_uri, all percent-encoded.
// An empty client id is a configuration error; callers must refuse to
// navigate rather than issue a malformed request.
func AuthorizeURL(cfg Config) (string, error) {
	if cfg.ClientID == "" {
		return "", errors.Wrap(interrors.ErrMissingOAuthClientID, "[AuthorizeURL]")
	}

	oauthConfig := oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURI,
		Scopes:      []string{cfg.Scopes},
		Endpoint:    oauth2.Endpoint{AuthURL: cfg.AuthURL},
	}
	return oauthConfig.AuthCodeURL("", oauth2.AccessTypeOffline), nil
}
