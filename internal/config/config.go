package config

type Config interface {
	ServerConfig
	DirectoryConfig
	APIConfig
	OAuthConfig
	CorsConfig
}

type ServerConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetSessionFile() string
}

type DirectoryConfig interface {
	GetRegion() string
	GetUserPoolID() string
	GetDirectoryClientID() string
	GetDirectoryEndpoint() string
	GetIssuerURL() string
}

type APIConfig interface {
	GetAPIBaseURL() string
}

type OAuthConfig interface {
	GetOAuthURL() string
	GetOAuthScopes() string
	GetOAuthClientID() string
	GetOAuthRedirectURI() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}
