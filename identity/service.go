// Package identity orchestrates the signup, verification, sign-in, and
// sign-out flows across the hosted directory, the business backend, and the
// locally persisted session.
package identity

import (
	"context"
	"strconv"

	"github.com/invoiceagent/gateway/backend"
	"github.com/invoiceagent/gateway/directory"
	interrors "github.com/invoiceagent/gateway/internal/errors"
	"github.com/invoiceagent/gateway/session"
	"github.com/invoiceagent/gateway/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// pendingEmailKey holds the address awaiting a confirmation code in
// session-scoped storage, so the verification step can recover it. It is
// overwritten on each signup attempt and never actively deleted.
const pendingEmailKey = "userEmail"

// BackendAPI is the slice of the backend client the identity flows use.
type BackendAPI interface {
	CreateTenantAndUser(ctx context.Context, payload backend.RegistrationPayload) (backend.Record, error)
	UpdateUserStatus(ctx context.Context, subjectID, token, status string) (backend.Record, error)
}

// Service wires the directory, the backend, and the session store into the
// promise-shaped operations the views call.
type Service struct {
	directory directory.Directory
	backend   BackendAPI
	sessions  *session.Store
	flow      storage.Store
	logger    zerolog.Logger
}

func NewService(dir directory.Directory, backendAPI BackendAPI, sessions *session.Store, flow storage.Store) (*Service, error) {
	if dir == nil {
		return nil, errors.New("[NewService] directory is required")
	}
	if backendAPI == nil {
		return nil, errors.New("[NewService] backend client is required")
	}
	if sessions == nil {
		return nil, errors.New("[NewService] session store is required")
	}
	if flow == nil {
		return nil, errors.New("[NewService] flow storage is required")
	}
	return &Service{
		directory: dir,
		backend:   backendAPI,
		sessions:  sessions,
		flow:      flow,
		logger:    log.With().Str("component", "identity").Logger(),
	}, nil
}

// Register creates the user in the directory and then registers the
// tenant/user pair with the backend. The backend call is only issued after
// the directory call succeeds. A backend failure after directory success
// fails loud with a composite error naming both facts, so the caller can
// direct the user to support rather than leaving a confirmed-but-unregistered
// account silent.
func (s *Service) Register(ctx context.Context, draft Draft) (string, error) {
	if err := draft.validate(); err != nil {
		return "", errors.Wrap(err, "[Service.Register]")
	}

	// Recorded before anything can fail so the verification step can recover
	// the address regardless of outcome.
	if err := s.flow.Set(pendingEmailKey, draft.Email); err != nil {
		return "", errors.Wrap(err, "[Service.Register] persist pending email")
	}

	upperLimit, err := draft.InvoicesPerMonth.UpperLimit()
	if err != nil {
		return "", errors.Wrap(err, "[Service.Register]")
	}

	attributes := []directory.Attribute{
		{Name: "email", Value: draft.Email},
		{Name: "custom:business_name", Value: draft.BusinessName},
		{Name: "custom:business_type", Value: draft.BusinessType},
		{Name: "custom:invoices_per_month", Value: strconv.Itoa(upperLimit)},
	}
	if draft.FirstName != "" {
		attributes = append(attributes, directory.Attribute{Name: "given_name", Value: draft.FirstName})
	}
	if draft.LastName != "" {
		attributes = append(attributes, directory.Attribute{Name: "family_name", Value: draft.LastName})
	}

	result, err := s.directory.SignUp(ctx, directory.SignUpInput{
		Username:   draft.Email,
		Password:   draft.Password,
		Attributes: attributes,
	})
	if err != nil {
		return "", errors.Wrap(err, "[Service.Register] directory SignUp")
	}

	_, err = s.backend.CreateTenantAndUser(ctx, backend.RegistrationPayload{
		TenantData: backend.TenantData{
			BusinessName:             draft.BusinessName,
			BusinessType:             draft.BusinessType,
			Email:                    draft.Email,
			EstimatedInvoicesMonthly: upperLimit,
		},
		UserData: backend.UserData{
			Email:     draft.Email,
			FirstName: draft.FirstName,
			LastName:  draft.LastName,
			Role:      "user",
			Status:    "pending_confirmation",
			CognitoID: result.SubjectID,
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("subject", result.SubjectID).Msg("backend registration failed after directory signup")
		return "", errors.Wrapf(err, "user %s created in Cognito but backend registration failed", result.SubjectID)
	}

	s.logger.Info().Str("subject", result.SubjectID).Msg("registered")
	return result.SubjectID, nil
}

// ConfirmRegistration submits the emailed verification code with
// alias-creation forced on.
func (s *Service) ConfirmRegistration(ctx context.Context, email, code string) error {
	err := s.directory.ConfirmSignUp(ctx, email, code, true)
	return errors.Wrap(err, "[Service.ConfirmRegistration]")
}

// ResendConfirmationCode asks the directory for a fresh verification code.
func (s *Service) ResendConfirmationCode(ctx context.Context, email string) error {
	err := s.directory.ResendConfirmationCode(ctx, email)
	return errors.Wrap(err, "[Service.ResendConfirmationCode]")
}

// Authenticate signs the user in and persists the resulting session record.
// The directory reports the expiry in epoch seconds; the stored record is in
// epoch milliseconds.
func (s *Service) Authenticate(ctx context.Context, email, password string) (session.Record, error) {
	dirSession, err := s.directory.Authenticate(ctx, email, password)
	if err != nil {
		return session.Record{}, errors.Wrap(err, "[Service.Authenticate]")
	}

	record := session.Record{
		Username:     email,
		JWTToken:     dirSession.IDToken,
		AccessToken:  dirSession.AccessToken,
		RefreshToken: dirSession.RefreshToken,
		ExpiresAt:    dirSession.ExpiresAt * 1000,
	}
	if err := s.sessions.Save(record); err != nil {
		return session.Record{}, errors.Wrap(err, "[Service.Authenticate] save session")
	}

	s.logger.Info().Str("subject", dirSession.SubjectID).Msg("authenticated")
	return record, nil
}

// Attributes returns the directory attribute map for the current session.
func (s *Service) Attributes(ctx context.Context) (map[string]string, error) {
	record, ok := s.sessions.Load()
	if !ok {
		return nil, &directory.Error{Kind: directory.KindNoCurrentUser, Message: "no current user"}
	}

	attributes, err := s.directory.UserAttributes(ctx, record.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Attributes]")
	}
	return attributes, nil
}

// SignOut clears the directory session if one exists and deletes the
// persisted record unconditionally. Idempotent.
func (s *Service) SignOut(ctx context.Context) {
	if record, ok := s.sessions.Load(); ok {
		if err := s.directory.SignOut(ctx, record.AccessToken); err != nil {
			s.logger.Debug().Err(err).Msg("directory sign-out failed")
		}
	}
	s.sessions.Clear()
}

// Activate marks the signed-in user active at the backend, using the subject
// identifier from the directory attributes.
func (s *Service) Activate(ctx context.Context) error {
	record, ok := s.sessions.Load()
	if !ok {
		return interrors.ErrNotAuthenticated
	}

	attributes, err := s.directory.UserAttributes(ctx, record.AccessToken)
	if err != nil {
		return errors.Wrap(err, "[Service.Activate] attributes")
	}
	subjectID := attributes["sub"]
	if subjectID == "" {
		return errors.New("[Service.Activate] directory attributes missing sub")
	}

	if _, err := s.backend.UpdateUserStatus(ctx, subjectID, record.JWTToken, "active"); err != nil {
		return errors.Wrap(err, "[Service.Activate]")
	}
	return nil
}

// RequestPasswordReset starts the directory's two-step forgot-password flow.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	err := s.directory.ForgotPassword(ctx, email)
	return errors.Wrap(err, "[Service.RequestPasswordReset]")
}

// ConfirmPasswordReset completes the forgot-password flow.
func (s *Service) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	err := s.directory.ConfirmForgotPassword(ctx, email, code, newPassword)
	return errors.Wrap(err, "[Service.ConfirmPasswordReset]")
}

// PendingEmail reports the address recorded at the last signup attempt, if
// any. The marker is left in place; staleness is accepted.
func (s *Service) PendingEmail() (string, bool) {
	return s.flow.Get(pendingEmailKey)
}
