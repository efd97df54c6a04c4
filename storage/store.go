// Package storage provides the key/value storage capability the auth flows
// persist into. Two scopes exist: durable storage that survives restarts
// (File) and session-scoped storage that lives for the process (Memory).
package storage

// Store is an explicit storage capability injected into the components that
// need persistence, so tests can substitute an in-memory fake.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string)
}
