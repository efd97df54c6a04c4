package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// File is a durable Store backed by a single JSON file. Writes are flushed
// immediately so a restart never loses a saved session. A missing or
// malformed file is treated as empty rather than an error.
type File struct {
	mu     sync.Mutex
	path   string
	loaded bool
	values map[string]string
}

var _ Store = (*File)(nil)

func NewFile(path string) *File {
	return &File{path: path, values: make(map[string]string)}
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.load()
	v, ok := f.values[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.load()
	f.values[key] = value
	return f.flush()
}

func (f *File) Remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.load()
	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	_ = f.flush()
}

func (f *File) load() {
	if f.loaded {
		return
	}
	f.loaded = true

	b, err := os.ReadFile(f.path)
	if err != nil {
		return
	}
	values := make(map[string]string)
	if err := json.Unmarshal(b, &values); err != nil {
		return
	}
	f.values = values
}

func (f *File) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "[File.flush] MkdirAll")
	}
	b, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[File.flush] MarshalIndent")
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return errors.Wrap(err, "[File.flush] WriteFile")
	}
	return nil
}
