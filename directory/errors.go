package directory

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies directory failures for caller-facing messaging.
type Kind string

const (
	KindNotConfirmed           Kind = "not_confirmed"
	KindBadCredentials         Kind = "bad_credentials"
	KindInvalidCode            Kind = "invalid_code"
	KindPasswordChangeRequired Kind = "password_change_required"
	KindUserExists             Kind = "user_exists"
	KindNoCurrentUser          Kind = "no_current_user"
	KindGeneric                Kind = "generic"
)

// Error is a directory failure with its classification and the directory's
// own error code (the Cognito exception name) when one was reported.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// NewError builds a classified directory error from the directory's exception
// name and message. Unknown codes fall back to message-pattern matching.
func NewError(code, message string) *Error {
	return &Error{Kind: classify(code, message), Code: code, Message: message}
}

func classify(code, message string) Kind {
	switch code {
	case "UserNotConfirmedException":
		return KindNotConfirmed
	case "NotAuthorizedException":
		return KindBadCredentials
	case "CodeMismatchException", "ExpiredCodeException":
		return KindInvalidCode
	case "PasswordResetRequiredException":
		return KindPasswordChangeRequired
	case "UsernameExistsException":
		return KindUserExists
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "not confirmed"):
		return KindNotConfirmed
	case strings.Contains(lower, "incorrect username or password"):
		return KindBadCredentials
	case strings.Contains(lower, "invalid verification code"):
		return KindInvalidCode
	}
	return KindGeneric
}

// KindOf returns the classification of err, or KindGeneric for non-directory
// errors anywhere in the chain.
func KindOf(err error) Kind {
	var dirErr *Error
	if errors.As(err, &dirErr) {
		return dirErr.Kind
	}
	return KindGeneric
}

// IsKind reports whether err carries the given directory kind.
func IsKind(err error, kind Kind) bool {
	var dirErr *Error
	return errors.As(err, &dirErr) && dirErr.Kind == kind
}
