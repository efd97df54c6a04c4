package server

// Route path constants
// All gateway routes are defined here to ensure consistency and prevent typos
const (
	// Auth routes - signup and verification
	RouteSignup       = "/api/auth/signup"
	RouteVerify       = "/api/auth/verify"
	RouteVerifyResend = "/api/auth/verify/resend"
	RouteActivate     = "/api/auth/activate"

	// Auth routes - sign-in and session
	RouteSignin     = "/api/auth/signin"
	RouteSignout    = "/api/auth/signout"
	RouteSession    = "/api/auth/session"
	RouteAttributes = "/api/auth/attributes"

	// Auth routes - password management
	RouteForgotPassword = "/api/auth/forgot-password"
	RouteResetPassword  = "/api/auth/reset-password"

	// Integration routes
	RouteIntegrations          = "/api/integrations"
	RouteZohoAuthorize         = "/api/integrations/zoho/authorize"
	RouteIntegrationConnect    = "/api/integrations/{id}/connect"
	RouteIntegrationDisconnect = "/api/integrations/{id}/disconnect"

	// OAuth redirect entry point (full page navigation from the provider)
	RouteCallback = "/callback"

	// Dashboard
	RouteDashboard         = "/dashboard"
	RouteDashboardInvoices = "/api/dashboard/invoices"
)
