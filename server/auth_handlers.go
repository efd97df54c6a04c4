package server

import (
	"net/http"

	"github.com/invoiceagent/gateway/identity"
)

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft identity.Draft
		if !decodeJSON(w, r, &draft) {
			return
		}

		subjectID, err := s.identity.Register(r.Context(), draft)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"subject_id": subjectID})
	}
}

func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
			Code  string `json:"code"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}

		// The verification page recovers the address recorded at signup when
		// the caller does not repeat it.
		if body.Email == "" {
			if pending, ok := s.identity.PendingEmail(); ok {
				body.Email = pending
			}
		}
		if body.Email == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}
		if body.Code == "" {
			writeError(w, http.StatusBadRequest, "verification code is required")
			return
		}

		if err := s.identity.ConfirmRegistration(r.Context(), body.Email, body.Code); err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
	}
}

func (s *Server) ResendVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.Email == "" {
			if pending, ok := s.identity.PendingEmail(); ok {
				body.Email = pending
			}
		}
		if body.Email == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}

		if err := s.identity.ResendConfirmationCode(r.Context(), body.Email); err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
	}
}

func (s *Server) SigninHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.Email == "" || body.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		record, err := s.identity.Authenticate(r.Context(), body.Email, body.Password)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (s *Server) SignoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.identity.SignOut(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, ok := s.sessions.Load()
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (s *Server) AttributesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attributes, err := s.identity.Attributes(r.Context())
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attributes)
	}
}

func (s *Server) ActivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.identity.Activate(r.Context()); err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
	}
}

func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.Email == "" {
			writeError(w, http.StatusBadRequest, "email is required")
			return
		}

		if err := s.identity.RequestPasswordReset(r.Context(), body.Email); err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email       string `json:"email"`
			Code        string `json:"code"`
			NewPassword string `json:"newPassword"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		if body.Email == "" || body.Code == "" || body.NewPassword == "" {
			writeError(w, http.StatusBadRequest, "email, code, and newPassword are required")
			return
		}

		if err := s.identity.ConfirmPasswordReset(r.Context(), body.Email, body.Code, body.NewPassword); err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}
