package server

import (
	"encoding/json"
	"net/http"

	"github.com/invoiceagent/gateway/directory"
	interrors "github.com/invoiceagent/gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeFailure translates core errors into status codes. The core itself
// never renders anything user-facing.
func writeFailure(w http.ResponseWriter, err error) {
	switch directory.KindOf(err) {
	case directory.KindBadCredentials:
		writeError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	case directory.KindNotConfirmed:
		writeError(w, http.StatusForbidden, "account is not verified yet")
		return
	case directory.KindInvalidCode:
		writeError(w, http.StatusBadRequest, "invalid verification code")
		return
	case directory.KindPasswordChangeRequired:
		writeError(w, http.StatusForbidden, "password change required before continuing")
		return
	case directory.KindUserExists:
		writeError(w, http.StatusConflict, "an account with this email already exists")
		return
	case directory.KindNoCurrentUser:
		writeError(w, http.StatusUnauthorized, "no current user")
		return
	}

	switch {
	case interrors.Is(err, interrors.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not authenticated")
	case interrors.Is(err, interrors.ErrIntegrationNotFound):
		writeError(w, http.StatusNotFound, "integration not found")
	case interrors.Is(err, interrors.ErrIntegrationUsesOAuth):
		writeError(w, http.StatusConflict, "integration must be connected through the oauth flow")
	case interrors.Is(err, interrors.ErrMissingOAuthClientID):
		writeError(w, http.StatusUnprocessableEntity, "oauth client id is not configured")
	case interrors.Is(err, interrors.ErrMissingEmail),
		interrors.Is(err, interrors.ErrMissingPassword),
		interrors.Is(err, interrors.ErrUnknownBucket):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		// Wrapped internals stay in the log; the client gets a neutral message.
		log.Error().Err(err).Msg("unclassified failure")
		writeError(w, http.StatusBadGateway, "the request could not be completed")
	}
}
