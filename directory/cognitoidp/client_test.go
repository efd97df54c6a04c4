package cognitoidp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/invoiceagent/gateway/directory"
	"github.com/invoiceagent/gateway/directory/cognitoidp"
	"github.com/stretchr/testify/require"
)

const testClientID = "test-client-id"

func signedIDToken(t *testing.T, subject string, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   subject,
		"email": "jane@example.com",
		"exp":   expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestServer(t *testing.T, handler func(target string, body map[string]any) (int, any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/x-amz-json-1.1", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		status, response := handler(r.Header.Get("X-Amz-Target"), body)
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func TestSignUp(t *testing.T) {
	srv := newTestServer(t, func(target string, body map[string]any) (int, any) {
		require.Equal(t, "AWSCognitoIdentityProviderService.SignUp", target)
		require.Equal(t, testClientID, body["ClientId"])
		require.Equal(t, "jane@example.com", body["Username"])
		return http.StatusOK, map[string]any{"UserSub": "sub-123", "UserConfirmed": false}
	})
	defer srv.Close()

	client := cognitoidp.New(srv.URL, testClientID)
	result, err := client.SignUp(context.Background(), directory.SignUpInput{
		Username: "jane@example.com",
		Password: "password123",
		Attributes: []directory.Attribute{
			{Name: "email", Value: "jane@example.com"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "sub-123", result.SubjectID)
	require.False(t, result.Confirmed)
}

func TestSignUpDirectoryError(t *testing.T) {
	srv := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusBadRequest, map[string]any{
			"__type":  "UsernameExistsException",
			"message": "An account with the given email already exists.",
		}
	})
	defer srv.Close()

	client := cognitoidp.New(srv.URL, testClientID)
	_, err := client.SignUp(context.Background(), directory.SignUpInput{Username: "jane@example.com"})
	require.Error(t, err)
	require.True(t, directory.IsKind(err, directory.KindUserExists))
}

func TestAuthenticateSuccess(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	idToken := signedIDToken(t, "sub-123", expiry)

	srv := newTestServer(t, func(target string, body map[string]any) (int, any) {
		require.Equal(t, "AWSCognitoIdentityProviderService.InitiateAuth", target)
		require.Equal(t, "USER_PASSWORD_AUTH", body["AuthFlow"])
		return http.StatusOK, map[string]any{
			"AuthenticationResult": map[string]any{
				"IdToken":      idToken,
				"AccessToken":  "access-token",
				"RefreshToken": "refresh-token",
			},
		}
	})
	defer srv.Close()

	client := cognitoidp.New(srv.URL, testClientID)
	sess, err := client.Authenticate(context.Background(), "jane@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "sub-123", sess.SubjectID)
	require.Equal(t, idToken, sess.IDToken)
	require.Equal(t, "refresh-token", sess.RefreshToken)
	require.Equal(t, expiry.Unix(), sess.ExpiresAt)
}

func TestAuthenticateNotConfirmed(t *testing.T) {
	srv := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusBadRequest, map[string]any{
			"__type":  "UserNotConfirmedException",
			"message": "User is not confirmed.",
		}
	})
	defer srv.Close()

	client := cognitoidp.New(srv.URL, testClientID)
	_, err := client.Authenticate(context.Background(), "jane@example.com", "password123")
	require.True(t, directory.IsKind(err, directory.KindNotConfirmed))
}

func TestAuthenticateNewPasswordRequired(t *testing.T) {
	srv := newTestServer(t, func(string, map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"ChallengeName": "NEW_PASSWORD_REQUIRED"}
	})
	defer srv.Close()

	client := cognitoidp.New(srv.URL, testClientID)
	_, err := client.Authenticate(context.Background(), "jane@example.com", "password123")
	require.True(t, directory.IsKind(err, directory.KindPasswordChangeRequired))
}

func TestUserAttributes(t *testing.T) {
	srv := newTestServer(t, func(target string, body map[string]any) (int, any) {
		require.Equal(t, "AWSCognitoIdentityProviderService.GetUser", target)
		require.Equal(t, "access-token", body["AccessToken"])
		return http.StatusOK, map[string]any{
			"Username": "jane@example.com",
			"UserAttributes": []map[string]string{
				{"Name": "email", "Value": "jane@example.com"},
				{"Name": "email_verified", "Value": "true"},
				{"Name": "sub", "Value": "sub-123"},
			},
		}
	})
	defer srv.Close()

	client := cognitoidp.New(srv.URL, testClientID)
	attrs, err := client.UserAttributes(context.Background(), "access-token")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", attrs["email"])
	require.Equal(t, "true", attrs["email_verified"])
	require.Equal(t, "sub-123", attrs["sub"])
}

func TestConfirmSignUpInvalidCode(t *testing.T) {
	srv := newTestServer(t, func(target string, body map[string]any) (int, any) {
		require.Equal(t, "AWSCognitoIdentityProviderService.ConfirmSignUp", target)
		require.Equal(t, true, body["ForceAliasCreation"])
		return http.StatusBadRequest, map[string]any{
			"__type":  "CodeMismatchException",
			"message": "Invalid verification code provided, please try again.",
		}
	})
	defer srv.Close()

	client := cognitoidp.New(srv.URL, testClientID)
	err := client.ConfirmSignUp(context.Background(), "jane@example.com", "000000", true)
	require.True(t, directory.IsKind(err, directory.KindInvalidCode))
}
