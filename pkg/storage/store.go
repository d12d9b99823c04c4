// Package storage is the local durable key-value store. Values are JSON
// blobs under string keys; the backend (memory, BoltDB, SQLite) is chosen at
// startup.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys owned by the landing service
const (
	KeyLeadArchive = "mentorship.leads"
	KeyDemoUsers   = "mentorship.demo.users"
	KeyDemoSession = "mentorship.demo.session"
	KeyDeviceID    = "mentorship.device.id"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// SessionKey is the key of one client's demo session pointer
func SessionKey(sessionID string) string {
	return KeyDemoSession + "." + sessionID
}

// Store is a minimal key-value port. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open creates the store for the named backend
func Open(backend, path string) (Store, error) {
	switch backend {
	case "memory":
		return NewMemoryStore(), nil
	case "bolt":
		return NewBoltStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// GetJSON decodes the value at key into v. It returns false if the key is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("error decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and writes it at key
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
