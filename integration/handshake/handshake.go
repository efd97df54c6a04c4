// Package handshake handles the OAuth redirect boundary for the zoho
// integration: building the outbound authorization URL and reconciling the
// inbound callback. The authorization redirect is a full page navigation
// away from and back to the application, so the outcome is signalled through
// a session-scoped marker the dashboard consumes on its next visit.
package handshake

import (
	"context"
	"net/url"
	"time"

	"github.com/invoiceagent/gateway/backend"
	"github.com/invoiceagent/gateway/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Session-scoped marker keys written by the callback and consumed by the
// dashboard's integration panel.
const (
	statusKey    = "zohoIntegrationStatus"
	timestampKey = "zohoIntegrationTimestamp"

	statusConnected = "connected"
)

// State of one callback evaluation. Every evaluation is terminal: the user
// must restart the authorization request after a failure.
type State string

const (
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Result is the terminal outcome of a callback navigation.
type Result struct {
	State  State
	Reason string
}

// Marker is the session-scoped record of a completed handshake.
type Marker struct {
	Status    string
	Timestamp string
}

// Connected reports whether the marker records a successful handshake.
func (m Marker) Connected() bool {
	return m.Status == statusConnected
}

// Exchanger is the slice of the backend client the handshake uses.
type Exchanger interface {
	ExchangeOAuthCode(ctx context.Context, code string) (backend.Record, error)
}

// Handshake evaluates callback navigations and owns the completion marker.
type Handshake struct {
	exchanger Exchanger
	flow      storage.Store
	nowTime   func() time.Time
	logger    zerolog.Logger
}

type Option func(*Handshake)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(h *Handshake) {
		h.nowTime = nowFunc
	}
}

func New(exchanger Exchanger, flow storage.Store, options ...Option) (*Handshake, error) {
	if exchanger == nil {
		return nil, errors.New("[handshake.New] exchanger is required")
	}
	if flow == nil {
		return nil, errors.New("[handshake.New] flow storage is required")
	}

	h := &Handshake{
		exchanger: exchanger,
		flow:      flow,
		nowTime:   time.Now,
		logger:    log.With().Str("component", "handshake").Logger(),
	}
	for _, opt := range options {
		opt(h)
	}
	return h, nil
}

// HandleCallback evaluates one callback navigation. A provider-reported
// error or a missing code fails without any network call; otherwise the
// one-time code is exchanged through the backend. There is no retry: the
// user must restart the authorization request after any failure.
func (h *Handshake) HandleCallback(ctx context.Context, query url.Values) Result {
	if providerErr := query.Get("error"); providerErr != "" {
		h.logger.Warn().Str("error", providerErr).Msg("provider reported authorization error")
		return Result{State: StateFailed, Reason: providerErr}
	}

	code := query.Get("code")
	if code == "" {
		return Result{State: StateFailed, Reason: "no authorization code received"}
	}

	if _, err := h.exchanger.ExchangeOAuthCode(ctx, code); err != nil {
		h.logger.Error().Err(err).Msg("code exchange failed")
		return Result{State: StateFailed, Reason: exchangeFailureReason(err)}
	}

	timestamp := h.nowTime().UTC().Format(time.RFC3339)
	if err := h.flow.Set(statusKey, statusConnected); err != nil {
		return Result{State: StateFailed, Reason: err.Error()}
	}
	if err := h.flow.Set(timestampKey, timestamp); err != nil {
		return Result{State: StateFailed, Reason: err.Error()}
	}

	h.logger.Info().Str("timestamp", timestamp).Msg("integration connected")
	return Result{State: StateSucceeded}
}

// Consume returns the completion marker and clears it, so a later unrelated
// dashboard visit cannot reprocess a stale handshake.
func (h *Handshake) Consume() (Marker, bool) {
	status, ok := h.flow.Get(statusKey)
	if !ok {
		return Marker{}, false
	}
	timestamp, _ := h.flow.Get(timestampKey)

	h.flow.Remove(statusKey)
	h.flow.Remove(timestampKey)

	return Marker{Status: status, Timestamp: timestamp}, true
}

func exchangeFailureReason(err error) string {
	if err == nil {
		return "failed to exchange authorization code"
	}
	return err.Error()
}
