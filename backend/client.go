// Package backend is the HTTP client for the business backend API: tenant
// and user registration, the integration code exchange, and user status
// updates.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	signupPath       = "/auth/signup"
	zohoCallbackPath = "/auth/zoho/callback"
	userStatusPath   = "/auth/users/status/%s"

	// Fail-fast transport policy: bounded wait, no retries. A failed call is
	// terminal for that attempt and must be retried by the user.
	requestTimeout = 15 * time.Second
)

// TenantData is the tenant half of the registration payload.
type TenantData struct {
	BusinessName             string `json:"business_name"`
	BusinessType             string `json:"business_type"`
	Email                    string `json:"email"`
	EstimatedInvoicesMonthly int    `json:"estimated_invoices_monthly"`
}

// UserData is the user half of the registration payload.
type UserData struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CognitoID string `json:"cognito_id"`
}

// RegistrationPayload is the nested body POSTed to the signup endpoint.
type RegistrationPayload struct {
	TenantData TenantData `json:"tenant_data"`
	UserData   UserData   `json:"user_data"`
}

// Record is a backend response body. The gateway passes these through
// without interpreting them.
type Record map[string]any

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     log.With().Str("component", "backend").Logger(),
	}
}

// CreateTenantAndUser registers the tenant/user pair created by a directory
// signup. The endpoint is unauthenticated; the user is still pending
// confirmation at this point.
func (c *Client) CreateTenantAndUser(ctx context.Context, payload RegistrationPayload) (Record, error) {
	record, err := c.do(ctx, http.MethodPost, c.baseURL+signupPath, "", payload)
	return record, errors.Wrap(err, "[Client.CreateTenantAndUser]")
}

// ExchangeOAuthCode forwards the one-time authorization code from the
// integration redirect to the backend, which performs the provider token
// exchange server-side.
func (c *Client) ExchangeOAuthCode(ctx context.Context, code string) (Record, error) {
	record, err := c.do(ctx, http.MethodPost, c.baseURL+zohoCallbackPath, "", map[string]string{"code": code})
	return record, errors.Wrap(err, "[Client.ExchangeOAuthCode]")
}

// UpdateUserStatus PATCHes the user's status (e.g. to "active" after email
// verification). Requires the session's bearer token.
func (c *Client) UpdateUserStatus(ctx context.Context, subjectID, token, status string) (Record, error) {
	url := c.baseURL + fmt.Sprintf(userStatusPath, subjectID)
	record, err := c.do(ctx, http.MethodPatch, url, token, map[string]string{"status": status})
	return record, errors.Wrap(err, "[Client.UpdateUserStatus]")
}

func (c *Client) do(ctx context.Context, method, url, token string, body any) (Record, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "NewRequestWithContext")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "Do")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "ReadAll")
	}

	var record Record
	parseErr := json.Unmarshal(respBody, &record)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().Int("status", resp.StatusCode).Str("url", url).Msg("backend call failed")
		if parseErr == nil {
			if message, ok := record["message"].(string); ok && message != "" {
				return nil, errors.New(message)
			}
		}
		return nil, errors.Errorf("request failed with status %d", resp.StatusCode)
	}

	// A 2xx body that is not valid JSON is a generic parse error, never a
	// raw decoding failure bubbled to the caller.
	if parseErr != nil {
		return nil, errors.Errorf("request succeeded with status %d, response not valid JSON", resp.StatusCode)
	}
	return record, nil
}
