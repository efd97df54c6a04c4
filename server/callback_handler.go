package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/invoiceagent/gateway/integration/handshake"
)

// redirectDelaySeconds is a UX grace period before the success page sends
// the browser back to the dashboard, not a correctness requirement.
const redirectDelaySeconds = 2

const callbackSuccessPage = `<!DOCTYPE html>
<html>
<head>
  <meta http-equiv="refresh" content="%d;url=%s">
  <title>Zoho Integration</title>
</head>
<body>
  <h2>Zoho Integration</h2>
  <p>Your Zoho account has been connected successfully!</p>
  <p>Redirecting to dashboard...</p>
</body>
</html>`

const callbackFailurePage = `<!DOCTYPE html>
<html>
<head><title>Zoho Integration</title></head>
<body>
  <h2>Zoho Integration</h2>
  <p>Failed to connect your Zoho account</p>
  <p>%s</p>
  <p><a href="%s">Return to Dashboard</a></p>
</body>
</html>`

// CallbackHandler is the OAuth redirect entry point. The handshake is
// evaluated once per navigation; failures are terminal and the user must
// restart the authorization request.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := s.handshake.HandleCallback(r.Context(), r.URL.Query())

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if result.State != handshake.StateSucceeded {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, callbackFailurePage, html.EscapeString(result.Reason), RouteDashboard)
			return
		}
		fmt.Fprintf(w, callbackSuccessPage, redirectDelaySeconds, RouteDashboard)
	}
}
