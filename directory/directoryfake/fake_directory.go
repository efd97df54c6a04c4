// Package directoryfake provides an in-memory user pool implementing the
// directory port. It backs tests and local development when no real user
// pool is configured.
package directoryfake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/invoiceagent/gateway/directory"
	"golang.org/x/crypto/bcrypt"
)

// ConfirmationCode is the code every unconfirmed fake user accepts.
const ConfirmationCode = "123456"

const tokenTTL = time.Hour

// token_use claim values, mirroring the hosted directory's token pair.
const (
	tokenUseID     = "id"
	tokenUseAccess = "access"
)

type user struct {
	subjectID    string
	passwordHash []byte
	confirmed    bool
	attributes   map[string]string
}

// FakeDirectory is an in-memory implementation of directory.Directory.
type FakeDirectory struct {
	mu            sync.Mutex
	users         map[string]*user // keyed by username (email)
	signingSecret []byte
	nowTime       func() time.Time

	// SignUpErr, when set, is returned by SignUp before any state changes.
	SignUpErr error
	// SignUpCalls counts SignUp invocations.
	SignUpCalls int
}

var _ directory.Directory = (*FakeDirectory)(nil)

func New() *FakeDirectory {
	return &FakeDirectory{
		users:         make(map[string]*user),
		signingSecret: []byte("fake-directory-secret"),
		nowTime:       time.Now,
	}
}

// WithNowTime overrides the clock used for token expiries.
func (f *FakeDirectory) WithNowTime(nowFunc func() time.Time) *FakeDirectory {
	f.nowTime = nowFunc
	return f
}

func (f *FakeDirectory) SignUp(_ context.Context, input directory.SignUpInput) (directory.SignUpResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SignUpCalls++
	if f.SignUpErr != nil {
		return directory.SignUpResult{}, f.SignUpErr
	}

	if _, exists := f.users[input.Username]; exists {
		return directory.SignUpResult{}, directory.NewError("UsernameExistsException",
			"An account with the given email already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.MinCost)
	if err != nil {
		return directory.SignUpResult{}, err
	}

	subjectID := uuid.New().String()
	attributes := map[string]string{
		"sub":            subjectID,
		"email_verified": "false",
	}
	for _, a := range input.Attributes {
		attributes[a.Name] = a.Value
	}

	f.users[input.Username] = &user{
		subjectID:    subjectID,
		passwordHash: hash,
		attributes:   attributes,
	}
	return directory.SignUpResult{SubjectID: subjectID}, nil
}

func (f *FakeDirectory) ConfirmSignUp(_ context.Context, username, code string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[username]
	if !ok {
		return directory.NewError("UserNotFoundException", "User does not exist.")
	}
	if code != ConfirmationCode {
		return directory.NewError("CodeMismatchException",
			"Invalid verification code provided, please try again.")
	}
	u.confirmed = true
	u.attributes["email_verified"] = "true"
	return nil
}

func (f *FakeDirectory) ResendConfirmationCode(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[username]; !ok {
		return directory.NewError("UserNotFoundException", "User does not exist.")
	}
	return nil
}

func (f *FakeDirectory) Authenticate(_ context.Context, username, password string) (directory.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[username]
	if !ok {
		return directory.Session{}, directory.NewError("NotAuthorizedException",
			"Incorrect username or password.")
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return directory.Session{}, directory.NewError("NotAuthorizedException",
			"Incorrect username or password.")
	}
	if !u.confirmed {
		return directory.Session{}, directory.NewError("UserNotConfirmedException",
			"User is not confirmed.")
	}

	expiresAt := f.nowTime().Add(tokenTTL)
	idToken, err := f.mintToken(u.subjectID, username, tokenUseID, expiresAt)
	if err != nil {
		return directory.Session{}, err
	}
	accessToken, err := f.mintToken(u.subjectID, username, tokenUseAccess, expiresAt)
	if err != nil {
		return directory.Session{}, err
	}

	return directory.Session{
		SubjectID:    u.subjectID,
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: fmt.Sprintf("refresh-%s", uuid.New().String()),
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

func (f *FakeDirectory) UserAttributes(_ context.Context, accessToken string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	subject, err := f.accessTokenSubject(accessToken)
	if err != nil {
		return nil, directory.NewError("NotAuthorizedException", "Access Token has been revoked")
	}

	for _, u := range f.users {
		if u.subjectID == subject {
			attributes := make(map[string]string, len(u.attributes))
			for k, v := range u.attributes {
				attributes[k] = v
			}
			return attributes, nil
		}
	}
	return nil, directory.NewError("UserNotFoundException", "User does not exist.")
}

func (f *FakeDirectory) SignOut(context.Context, string) error {
	return nil
}

func (f *FakeDirectory) ForgotPassword(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[username]; !ok {
		return directory.NewError("UserNotFoundException", "User does not exist.")
	}
	return nil
}

func (f *FakeDirectory) ConfirmForgotPassword(_ context.Context, username, code, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[username]
	if !ok {
		return directory.NewError("UserNotFoundException", "User does not exist.")
	}
	if code != ConfirmationCode {
		return directory.NewError("CodeMismatchException",
			"Invalid verification code provided, please try again.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	return nil
}

func (f *FakeDirectory) mintToken(subject, email, tokenUse string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       subject,
		"email":     email,
		"token_use": tokenUse,
		"iat":       f.nowTime().Unix(),
		"exp":       expiresAt.Unix(),
		"jti":       uuid.New().String(),
	})
	return token.SignedString(f.signingSecret)
}

// accessTokenSubject validates the token and its token_use claim. GetUser
// and GlobalSignOut only accept access tokens, so an ID token is rejected
// the way the hosted directory rejects it.
func (f *FakeDirectory) accessTokenSubject(raw string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})).ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return f.signingSecret, nil })
	if err != nil {
		return "", err
	}
	if use, _ := claims["token_use"].(string); use != tokenUseAccess {
		return "", fmt.Errorf("token_use %q is not an access token", use)
	}
	return claims.GetSubject()
}
