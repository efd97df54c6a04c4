// Package integration tracks the connection state of the external invoicing
// platforms shown on the dashboard. Only zoho goes through a real OAuth
// handshake; the others are presentational stand-ins with simulated
// connects.
package integration

// Well-known integration keys.
const (
	KeyQuickBooks = "quickbooks"
	KeyZoho       = "zoho"
	KeyFreshBooks = "freshbooks"
	KeyXero       = "xero"
)

// Display labels for the two connection states.
const (
	StatusConnected    = "Connected"
	StatusNotConnected = "Not Connected"
)

// Connection is the per-integration state the dashboard renders.
type Connection struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
	LastSync  string `json:"lastSync,omitempty"`
	UsesOAuth bool   `json:"usesOAuth"`
}

// Repo stores integration connection state.
type Repo interface {
	List() []Connection
	Get(id string) (Connection, error)
	SetConnected(id, lastSync string) error
	SetDisconnected(id string) error
}
