package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvVars holds all environment-provided settings. Every field has a
// documented fallback so the gateway starts with no environment at all
// (pointing at localhost defaults).
type EnvVars struct {
	Port        string `env:"PORT" envDefault:"8080"`
	AppName     string `env:"APP_NAME" envDefault:"InvoiceAgent Gateway"`
	Env         string `env:"ENV" envDefault:"DEV"`
	SessionFile string `env:"SESSION_FILE" envDefault:"./data/session.json"`

	Region            string `env:"AWS_REGION" envDefault:"us-east-1"`
	UserPoolID        string `env:"COGNITO_USER_POOL_ID"`
	DirectoryClientID string `env:"COGNITO_CLIENT_ID"`
	DirectoryEndpoint string `env:"COGNITO_ENDPOINT"`
	IssuerURL         string `env:"DIRECTORY_ISSUER_URL"`

	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api/v1"`

	OAuthURL         string `env:"ZOHO_OAUTH_URL" envDefault:"https://accounts.zoho.com/oauth/v2/auth"`
	OAuthScopes      string `env:"ZOHO_SCOPES" envDefault:"ZohoBooks.invoices.READ,ZohoBooks.invoices.UPDATE"`
	OAuthClientID    string `env:"ZOHO_CLIENT_ID"`
	OAuthRedirectURI string `env:"ZOHO_REDIRECT_URI" envDefault:"http://localhost:8080/callback"`

	CorsOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CorsMethods string   `env:"CORS_ALLOWED_METHODS" envDefault:"GET, POST, PUT, PATCH, DELETE"`
	CorsHeaders string   `env:"CORS_ALLOWED_HEADERS" envDefault:"Content-Type, Authorization"`
}

var _ Config = EnvVars{}

func New() (Config, error) {
	var e EnvVars
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("config.New: %w", err)
	}
	return e, nil
}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return fmt.Sprintf(":%s", e.Port)
}

func (e EnvVars) GetAppName() string { return e.AppName }

func (e EnvVars) GetEnv() string { return e.Env }

func (e EnvVars) GetSessionFile() string { return e.SessionFile }

func (e EnvVars) GetRegion() string { return e.Region }

func (e EnvVars) GetUserPoolID() string { return e.UserPoolID }

func (e EnvVars) GetDirectoryClientID() string { return e.DirectoryClientID }

// GetDirectoryEndpoint returns the directory service endpoint, derived from
// the region when not set explicitly.
func (e EnvVars) GetDirectoryEndpoint() string {
	if e.DirectoryEndpoint != "" {
		return e.DirectoryEndpoint
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/", e.Region)
}

// GetIssuerURL returns the OIDC issuer of the user pool. Empty when no pool
// is configured, which disables Bearer-token verification.
func (e EnvVars) GetIssuerURL() string {
	if e.IssuerURL != "" {
		return e.IssuerURL
	}
	if e.UserPoolID == "" {
		return ""
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", e.Region, e.UserPoolID)
}

func (e EnvVars) GetAPIBaseURL() string { return e.APIBaseURL }

func (e EnvVars) GetOAuthURL() string { return e.OAuthURL }

func (e EnvVars) GetOAuthScopes() string { return e.OAuthScopes }

func (e EnvVars) GetOAuthClientID() string { return e.OAuthClientID }

func (e EnvVars) GetOAuthRedirectURI() string { return e.OAuthRedirectURI }
