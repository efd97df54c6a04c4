// Package session owns the locally persisted authenticated-session record
// and the route guard that protected views consult before rendering.
package session

import (
	"encoding/json"
	"time"

	"github.com/invoiceagent/gateway/storage"
	"github.com/pkg/errors"
)

// recordKey is the durable storage key holding the serialized record.
const recordKey = "userData"

// Record represents one authenticated session. ExpiresAt is epoch
// milliseconds; a record is valid iff ExpiresAt > now. JWTToken is the ID
// token presented to the backend API; AccessToken is the directory access
// token, which is the only token the directory accepts on GetUser and
// GlobalSignOut.
type Record struct {
	Username     string `json:"username"`
	JWTToken     string `json:"jwtToken"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

// Store reads and writes the durable session record. Load never returns an
// expired record; callers treat absence as "not authenticated", not an error.
type Store struct {
	storage storage.Store
	nowTime func() time.Time
}

type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func NewStore(durable storage.Store, options ...StoreOption) *Store {
	s := &Store{storage: durable, nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Load returns the current record, or ok=false when no valid record exists.
// Malformed stored data is treated as absent. Expired records are evicted.
func (s *Store) Load() (Record, bool) {
	raw, ok := s.storage.Get(recordKey)
	if !ok {
		return Record{}, false
	}

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return Record{}, false
	}

	if record.ExpiresAt <= s.nowTime().UnixMilli() {
		s.storage.Remove(recordKey)
		return Record{}, false
	}

	return record, true
}

func (s *Store) Save(record Record) error {
	b, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[Store.Save] Marshal")
	}
	if err := s.storage.Set(recordKey, string(b)); err != nil {
		return errors.Wrap(err, "[Store.Save] Set")
	}
	return nil
}

func (s *Store) Clear() {
	s.storage.Remove(recordKey)
}
