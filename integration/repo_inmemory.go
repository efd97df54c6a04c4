package integration

import (
	"sync"

	interrors "github.com/invoiceagent/gateway/internal/errors"
)

// InMemoryRepo is an in-memory implementation of Repo seeded with the fixed
// integration set. All integrations start disconnected.
type InMemoryRepo struct {
	mu          sync.RWMutex
	order       []string
	connections map[string]Connection
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	seed := []Connection{
		{ID: KeyQuickBooks, Name: "QuickBooks Online", Status: StatusNotConnected},
		{ID: KeyZoho, Name: "Zoho Invoice", Status: StatusNotConnected, UsesOAuth: true},
		{ID: KeyFreshBooks, Name: "FreshBooks", Status: StatusNotConnected},
		{ID: KeyXero, Name: "Xero", Status: StatusNotConnected},
	}

	repo := &InMemoryRepo{connections: make(map[string]Connection, len(seed))}
	for _, c := range seed {
		repo.order = append(repo.order, c.ID)
		repo.connections[c.ID] = c
	}
	return repo
}

// List returns the connections in their fixed display order.
func (r *InMemoryRepo) List() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Connection, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.connections[id])
	}
	return list
}

func (r *InMemoryRepo) Get(id string) (Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connections[id]
	if !ok {
		return Connection{}, interrors.ErrIntegrationNotFound
	}
	return c, nil
}

func (r *InMemoryRepo) SetConnected(id, lastSync string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connections[id]
	if !ok {
		return interrors.ErrIntegrationNotFound
	}
	c.Connected = true
	c.Status = StatusConnected
	c.LastSync = lastSync
	r.connections[id] = c
	return nil
}

func (r *InMemoryRepo) SetDisconnected(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connections[id]
	if !ok {
		return interrors.ErrIntegrationNotFound
	}
	c.Connected = false
	c.Status = StatusNotConnected
	c.LastSync = ""
	r.connections[id] = c
	return nil
}
