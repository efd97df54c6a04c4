package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/invoiceagent/gateway/backend"
	"github.com/invoiceagent/gateway/directory/directoryfake"
	"github.com/invoiceagent/gateway/identity"
	"github.com/invoiceagent/gateway/integration"
	"github.com/invoiceagent/gateway/integration/handshake"
	"github.com/invoiceagent/gateway/internal/config"
	"github.com/invoiceagent/gateway/server"
	"github.com/invoiceagent/gateway/session"
	"github.com/invoiceagent/gateway/storage"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "password123"
)

type testGateway struct {
	server       *server.Server
	backendCalls map[string]int
}

func testConfig(oauthClientID string) config.EnvVars {
	return config.EnvVars{
		Port:             "8080",
		AppName:          "InvoiceAgent Gateway",
		Env:              "TEST",
		OAuthURL:         "https://accounts.zoho.com/oauth/v2/auth",
		OAuthScopes:      "ZohoBooks.invoices.READ,ZohoBooks.invoices.UPDATE",
		OAuthClientID:    oauthClientID,
		OAuthRedirectURI: "http://localhost:8080/callback",
	}
}

func setupGateway(t *testing.T, oauthClientID string) *testGateway {
	t.Helper()
	return setupGatewayWithBackend(t, oauthClientID, nil)
}

func setupGatewayWithBackend(t *testing.T, oauthClientID string, backendHandler http.HandlerFunc) *testGateway {
	t.Helper()

	gw := &testGateway{backendCalls: map[string]int{}}

	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gw.backendCalls[r.URL.Path]++
		if backendHandler != nil {
			backendHandler(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	t.Cleanup(backendSrv.Close)

	backendClient := backend.New(backendSrv.URL)
	sessions := session.NewStore(storage.NewMemory())
	flow := storage.NewMemory()

	identityService, err := identity.NewService(directoryfake.New(), backendClient, sessions, flow)
	require.NoError(t, err)

	hs, err := handshake.New(backendClient, flow)
	require.NoError(t, err)

	srv, err := server.New(testConfig(oauthClientID), server.Deps{
		Identity:     identityService,
		Sessions:     sessions,
		Integrations: integration.NewInMemoryRepo(),
		Handshake:    hs,
	})
	require.NoError(t, err)

	gw.server = srv
	return gw
}

func (g *testGateway) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	g.server.ServeHTTP(recorder, req)
	return recorder
}

func (g *testGateway) signupAndSignin(t *testing.T) {
	t.Helper()

	resp := g.do(t, http.MethodPost, server.RouteSignup, map[string]string{
		"email":            testEmail,
		"password":         testPassword,
		"businessName":     "Acme Plumbing",
		"businessType":     "services",
		"invoicesPerMonth": "11-25",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	// Verification recovers the pending email; no email in the body.
	resp = g.do(t, http.MethodPost, server.RouteVerify, map[string]string{
		"code": directoryfake.ConfirmationCode,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = g.do(t, http.MethodPost, server.RouteSignin, map[string]string{
		"email":    testEmail,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestSignupVerifySigninFlow(t *testing.T) {
	gw := setupGateway(t, "client-123")

	resp := gw.do(t, http.MethodGet, server.RouteSession, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	gw.signupAndSignin(t)
	require.Equal(t, 1, gw.backendCalls["/auth/signup"])

	resp = gw.do(t, http.MethodGet, server.RouteSession, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var record session.Record
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &record))
	require.Equal(t, testEmail, record.Username)
	require.NotEmpty(t, record.JWTToken)

	resp = gw.do(t, http.MethodPost, server.RouteSignout, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = gw.do(t, http.MethodGet, server.RouteSession, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSigninRejectsBadCredentials(t *testing.T) {
	gw := setupGateway(t, "client-123")
	gw.signupAndSignin(t)

	resp := gw.do(t, http.MethodPost, server.RouteSignin, map[string]string{
		"email":    testEmail,
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDashboardInvoicesAreGuarded(t *testing.T) {
	gw := setupGateway(t, "client-123")

	resp := gw.do(t, http.MethodGet, server.RouteDashboardInvoices, nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	gw.signupAndSignin(t)

	resp = gw.do(t, http.MethodGet, server.RouteDashboardInvoices, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Invoices     []server.Invoice `json:"invoices"`
		TotalOverdue float64          `json:"totalOverdue"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Invoices, 4)
	require.InDelta(t, 7950.00, body.TotalOverdue, 0.001)
}

func TestSignupBackendFailureReturnsGenericMessage(t *testing.T) {
	gw := setupGatewayWithBackend(t, "client-123", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "tenant quota exceeded"})
	})

	resp := gw.do(t, http.MethodPost, server.RouteSignup, map[string]string{
		"email":            testEmail,
		"password":         testPassword,
		"businessName":     "Acme Plumbing",
		"businessType":     "services",
		"invoicesPerMonth": "11-25",
	})
	require.Equal(t, http.StatusBadGateway, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "the request could not be completed", body["message"])
	require.NotContains(t, resp.Body.String(), "tenant quota exceeded")
	require.NotContains(t, resp.Body.String(), "[Service")
}

func TestOAuthCallbackConnectsIntegration(t *testing.T) {
	gw := setupGateway(t, "client-123")
	gw.signupAndSignin(t)

	resp := gw.do(t, http.MethodGet, server.RouteCallback+"?code=ABC123", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "connected successfully")
	require.Equal(t, 1, gw.backendCalls["/auth/zoho/callback"])

	resp = gw.do(t, http.MethodGet, server.RouteIntegrations, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Integrations []integration.Connection `json:"integrations"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	var zoho integration.Connection
	for _, c := range body.Integrations {
		if c.ID == integration.KeyZoho {
			zoho = c
		}
	}
	require.True(t, zoho.Connected)
	require.Equal(t, integration.StatusConnected, zoho.Status)
	require.NotEmpty(t, zoho.LastSync)
}

func TestOAuthCallbackProviderError(t *testing.T) {
	gw := setupGateway(t, "client-123")

	resp := gw.do(t, http.MethodGet, server.RouteCallback+"?error=access_denied", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "access_denied")
	require.Equal(t, 0, gw.backendCalls["/auth/zoho/callback"])
}

func TestZohoAuthorizeURL(t *testing.T) {
	gw := setupGateway(t, "client-123")
	gw.signupAndSignin(t)

	resp := gw.do(t, http.MethodGet, server.RouteZohoAuthorize, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Contains(t, body["url"], "response_type=code")
	require.Contains(t, body["url"], "access_type=offline")
	require.Contains(t, body["url"], "client_id=client-123")
}

func TestZohoAuthorizeWithoutClientID(t *testing.T) {
	gw := setupGateway(t, "")
	gw.signupAndSignin(t)

	resp := gw.do(t, http.MethodGet, server.RouteZohoAuthorize, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSimulatedConnectAndDisconnect(t *testing.T) {
	gw := setupGateway(t, "client-123")
	gw.signupAndSignin(t)

	resp := gw.do(t, http.MethodPost, "/api/integrations/freshbooks/connect", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var connection integration.Connection
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &connection))
	require.True(t, connection.Connected)
	require.Equal(t, "Just now", connection.LastSync)

	// zoho must go through the oauth flow
	resp = gw.do(t, http.MethodPost, "/api/integrations/zoho/connect", nil)
	require.Equal(t, http.StatusConflict, resp.Code)

	resp = gw.do(t, http.MethodPost, "/api/integrations/freshbooks/disconnect", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &connection))
	require.False(t, connection.Connected)
}

func TestActivateMarksUserActive(t *testing.T) {
	gw := setupGateway(t, "client-123")
	gw.signupAndSignin(t)

	resp := gw.do(t, http.MethodPost, server.RouteActivate, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Equal(t, 1, gw.backendCalls["/auth/users/status/"+gw.subjectID(t)])
}

func (g *testGateway) subjectID(t *testing.T) string {
	t.Helper()
	resp := g.do(t, http.MethodGet, server.RouteAttributes, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var attrs map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &attrs))
	require.NotEmpty(t, attrs["sub"])
	return attrs["sub"]
}
