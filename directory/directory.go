// Package directory defines the port to the hosted user directory (the
// Cognito user pool) that issues tokens and manages confirmation state.
package directory

import "context"

// Attribute is a single name/value pair attached to a directory user.
type Attribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// SignUpInput carries everything the directory needs to create an
// unconfirmed user.
type SignUpInput struct {
	Username   string
	Password   string
	Attributes []Attribute
}

// SignUpResult reports the directory-assigned subject identifier.
type SignUpResult struct {
	SubjectID string
	Confirmed bool
}

// Session is the token set the directory issues on successful
// authentication. ExpiresAt is the absolute expiry of the ID token in epoch
// seconds, as reported by the directory.
type Session struct {
	SubjectID    string
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// Directory adapts the hosted user-directory primitives into plain
// context-aware operations.
type Directory interface {
	SignUp(ctx context.Context, input SignUpInput) (SignUpResult, error)
	ConfirmSignUp(ctx context.Context, username, code string, forceAliasCreation bool) error
	ResendConfirmationCode(ctx context.Context, username string) error
	Authenticate(ctx context.Context, username, password string) (Session, error)
	UserAttributes(ctx context.Context, accessToken string) (map[string]string, error)
	SignOut(ctx context.Context, accessToken string) error
	ForgotPassword(ctx context.Context, username string) error
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error
}
