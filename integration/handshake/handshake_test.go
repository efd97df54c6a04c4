package handshake_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/invoiceagent/gateway/backend"
	"github.com/invoiceagent/gateway/integration/handshake"
	"github.com/invoiceagent/gateway/storage"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeExchanger struct {
	calls    int
	lastCode string
	err      error
}

func (f *fakeExchanger) ExchangeOAuthCode(_ context.Context, code string) (backend.Record, error) {
	f.calls++
	f.lastCode = code
	if f.err != nil {
		return nil, f.err
	}
	return backend.Record{"status": "ok"}, nil
}

var handshakeNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newHandshake(t *testing.T, exchanger *fakeExchanger) (*handshake.Handshake, *storage.Memory) {
	t.Helper()
	flow := storage.NewMemory()
	h, err := handshake.New(exchanger, flow,
		handshake.WithNowTime(func() time.Time { return handshakeNow }))
	require.NoError(t, err)
	return h, flow
}

func TestCallbackProviderErrorSkipsExchange(t *testing.T) {
	exchanger := &fakeExchanger{}
	h, flow := newHandshake(t, exchanger)

	result := h.HandleCallback(context.Background(), url.Values{"error": {"access_denied"}})
	require.Equal(t, handshake.StateFailed, result.State)
	require.Equal(t, "access_denied", result.Reason)
	require.Equal(t, 0, exchanger.calls, "no network call on the error path")

	_, ok := flow.Get("zohoIntegrationStatus")
	require.False(t, ok)
}

func TestCallbackMissingCode(t *testing.T) {
	exchanger := &fakeExchanger{}
	h, _ := newHandshake(t, exchanger)

	result := h.HandleCallback(context.Background(), url.Values{})
	require.Equal(t, handshake.StateFailed, result.State)
	require.Equal(t, "no authorization code received", result.Reason)
	require.Equal(t, 0, exchanger.calls)
}

func TestCallbackSuccessWritesMarker(t *testing.T) {
	exchanger := &fakeExchanger{}
	h, flow := newHandshake(t, exchanger)

	result := h.HandleCallback(context.Background(), url.Values{"code": {"ABC123"}})
	require.Equal(t, handshake.StateSucceeded, result.State)
	require.Equal(t, "ABC123", exchanger.lastCode)

	status, ok := flow.Get("zohoIntegrationStatus")
	require.True(t, ok)
	require.Equal(t, "connected", status)

	timestamp, ok := flow.Get("zohoIntegrationTimestamp")
	require.True(t, ok)
	require.Equal(t, handshakeNow.Format(time.RFC3339), timestamp)
}

func TestCallbackExchangeFailure(t *testing.T) {
	exchanger := &fakeExchanger{err: errors.New("invalid grant")}
	h, flow := newHandshake(t, exchanger)

	result := h.HandleCallback(context.Background(), url.Values{"code": {"ABC123"}})
	require.Equal(t, handshake.StateFailed, result.State)
	require.Contains(t, result.Reason, "invalid grant")

	_, ok := flow.Get("zohoIntegrationStatus")
	require.False(t, ok)
}

func TestConsumeIsOneShot(t *testing.T) {
	exchanger := &fakeExchanger{}
	h, _ := newHandshake(t, exchanger)

	_, ok := h.Consume()
	require.False(t, ok)

	h.HandleCallback(context.Background(), url.Values{"code": {"ABC123"}})

	marker, ok := h.Consume()
	require.True(t, ok)
	require.Equal(t, "connected", marker.Status)
	require.Equal(t, handshakeNow.Format(time.RFC3339), marker.Timestamp)

	_, ok = h.Consume()
	require.False(t, ok, "marker must not be reprocessed on a later visit")
}
