package server

func (s *Server) initRoutes() {
	api := s.APIMiddleware()

	// Signup & verification
	s.RegisterRouteFunc("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteVerify, ChainMiddleware(s.VerifyHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteVerifyResend, ChainMiddleware(s.ResendVerificationHandler(), api...))

	// Sign-in & session
	s.RegisterRouteFunc("POST "+RouteSignin, ChainMiddleware(s.SigninHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteSignout, ChainMiddleware(s.SignoutHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), api...))
	s.RegisterRouteFunc("GET "+RouteAttributes, ChainMiddleware(s.AttributesHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteActivate, ChainMiddleware(s.ActivateHandler(), append(api, s.RequireAuth())...))

	// Password management
	s.RegisterRouteFunc("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), api...))
	s.RegisterRouteFunc("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordHandler(), api...))

	// Integrations panel
	s.RegisterRouteFunc("GET "+RouteIntegrations, ChainMiddleware(s.IntegrationsHandler(), append(api, s.RequireAuth())...))
	s.RegisterRouteFunc("GET "+RouteZohoAuthorize, ChainMiddleware(s.ZohoAuthorizeHandler(), append(api, s.RequireAuth())...))
	s.RegisterRouteFunc("POST "+RouteIntegrationConnect, ChainMiddleware(s.ConnectHandler(), append(api, s.RequireAuth())...))
	s.RegisterRouteFunc("POST "+RouteIntegrationDisconnect, ChainMiddleware(s.DisconnectHandler(), append(api, s.RequireAuth())...))

	// OAuth redirect boundary
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.HTMLMiddleware()...))

	// Dashboard data (guarded)
	s.RegisterRouteFunc("GET "+RouteDashboardInvoices, ChainMiddleware(s.DashboardInvoicesHandler(), append(api, s.RequireAuth())...))
}
