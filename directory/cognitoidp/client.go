// Package cognitoidp implements the directory port against the Cognito
// Identity Provider JSON API. All operations used here (SignUp, ConfirmSignUp,
// InitiateAuth, GetUser, GlobalSignOut, ForgotPassword, ConfirmForgotPassword)
// are unauthenticated client-side calls keyed only by the app client id, so
// no request signing is involved.
package cognitoidp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/invoiceagent/gateway/directory"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	contentType  = "application/x-amz-json-1.1"
	targetPrefix = "AWSCognitoIdentityProviderService."

	// Network calls fail fast; there is no retry policy, every failure is
	// terminal for the attempt.
	requestTimeout = 15 * time.Second
)

type Client struct {
	endpoint   string
	clientID   string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ directory.Directory = (*Client)(nil)

func New(endpoint, clientID string) *Client {
	return &Client{
		endpoint:   endpoint,
		clientID:   clientID,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     log.With().Str("component", "cognitoidp").Logger(),
	}
}

func (c *Client) SignUp(ctx context.Context, input directory.SignUpInput) (directory.SignUpResult, error) {
	var out struct {
		UserSub       string `json:"UserSub"`
		UserConfirmed bool   `json:"UserConfirmed"`
	}
	err := c.call(ctx, "SignUp", map[string]any{
		"ClientId":       c.clientID,
		"Username":       input.Username,
		"Password":       input.Password,
		"UserAttributes": input.Attributes,
	}, &out)
	if err != nil {
		return directory.SignUpResult{}, errors.Wrap(err, "[Client.SignUp]")
	}
	return directory.SignUpResult{SubjectID: out.UserSub, Confirmed: out.UserConfirmed}, nil
}

func (c *Client) ConfirmSignUp(ctx context.Context, username, code string, forceAliasCreation bool) error {
	err := c.call(ctx, "ConfirmSignUp", map[string]any{
		"ClientId":           c.clientID,
		"Username":           username,
		"ConfirmationCode":   code,
		"ForceAliasCreation": forceAliasCreation,
	}, nil)
	return errors.Wrap(err, "[Client.ConfirmSignUp]")
}

func (c *Client) ResendConfirmationCode(ctx context.Context, username string) error {
	err := c.call(ctx, "ResendConfirmationCode", map[string]any{
		"ClientId": c.clientID,
		"Username": username,
	}, nil)
	return errors.Wrap(err, "[Client.ResendConfirmationCode]")
}

func (c *Client) Authenticate(ctx context.Context, username, password string) (directory.Session, error) {
	var out struct {
		ChallengeName        string `json:"ChallengeName"`
		AuthenticationResult *struct {
			IDToken      string `json:"IdToken"`
			AccessToken  string `json:"AccessToken"`
			RefreshToken string `json:"RefreshToken"`
		} `json:"AuthenticationResult"`
	}
	err := c.call(ctx, "InitiateAuth", map[string]any{
		"AuthFlow": "USER_PASSWORD_AUTH",
		"ClientId": c.clientID,
		"AuthParameters": map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	}, &out)
	if err != nil {
		return directory.Session{}, errors.Wrap(err, "[Client.Authenticate]")
	}

	if out.ChallengeName == "NEW_PASSWORD_REQUIRED" {
		return directory.Session{}, directory.NewError("PasswordResetRequiredException",
			"you need to change your password before continuing")
	}
	if out.AuthenticationResult == nil {
		return directory.Session{}, errors.Errorf("[Client.Authenticate] unsupported challenge %q", out.ChallengeName)
	}

	subject, expiresAt, err := idTokenClaims(out.AuthenticationResult.IDToken)
	if err != nil {
		return directory.Session{}, errors.Wrap(err, "[Client.Authenticate] idTokenClaims")
	}

	return directory.Session{
		SubjectID:    subject,
		IDToken:      out.AuthenticationResult.IDToken,
		AccessToken:  out.AuthenticationResult.AccessToken,
		RefreshToken: out.AuthenticationResult.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (c *Client) UserAttributes(ctx context.Context, accessToken string) (map[string]string, error) {
	var out struct {
		Username       string                `json:"Username"`
		UserAttributes []directory.Attribute `json:"UserAttributes"`
	}
	err := c.call(ctx, "GetUser", map[string]any{"AccessToken": accessToken}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.UserAttributes]")
	}

	attributes := make(map[string]string, len(out.UserAttributes))
	for _, a := range out.UserAttributes {
		attributes[a.Name] = a.Value
	}
	return attributes, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	err := c.call(ctx, "GlobalSignOut", map[string]any{"AccessToken": accessToken}, nil)
	return errors.Wrap(err, "[Client.SignOut]")
}

func (c *Client) ForgotPassword(ctx context.Context, username string) error {
	err := c.call(ctx, "ForgotPassword", map[string]any{
		"ClientId": c.clientID,
		"Username": username,
	}, nil)
	return errors.Wrap(err, "[Client.ForgotPassword]")
}

func (c *Client) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	err := c.call(ctx, "ConfirmForgotPassword", map[string]any{
		"ClientId":         c.clientID,
		"Username":         username,
		"ConfirmationCode": code,
		"Password":         newPassword,
	}, nil)
	return errors.Wrap(err, "[Client.ConfirmForgotPassword]")
}

// call performs one x-amz-json-1.1 operation. Non-2xx responses carry a
// {__type, message} body naming the directory exception, which is mapped to a
// classified directory error.
func (c *Client) call(ctx context.Context, operation string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "NewRequestWithContext")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Amz-Target", targetPrefix+operation)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s request", operation)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "%s read response", operation)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Type    string `json:"__type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Type == "" {
			return directory.NewError("", string(respBody))
		}
		c.logger.Debug().Str("operation", operation).Str("type", apiErr.Type).Msg("directory call failed")
		return directory.NewError(apiErr.Type, apiErr.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "%s unmarshal response", operation)
	}
	return nil
}

// idTokenClaims extracts the subject and absolute expiry (epoch seconds) from
// the directory-issued ID token. The signature is not verified here; the
// token came straight from the directory over TLS and verification belongs to
// the resource servers that accept it.
func idTokenClaims(idToken string) (string, int64, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", 0, errors.Wrap(err, "ParseUnverified")
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return "", 0, errors.Wrap(err, "GetSubject")
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return "", 0, errors.New("id token has no exp claim")
	}
	return subject, expiry.Unix(), nil
}
