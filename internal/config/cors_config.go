package config

import "strings"

type AllowedOrigins map[string]struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (e EnvVars) GetAllowedOrigins() AllowedOrigins {
	origins := make(AllowedOrigins, len(e.CorsOrigins))
	for _, o := range e.CorsOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = struct{}{}
		}
	}
	return origins
}

func (e EnvVars) GetAllowedMethods() string {
	return e.CorsMethods
}

func (e EnvVars) GetAllowedHeaders() string {
	return e.CorsHeaders
}
