// Package leads persists validated lead submissions. A FanoutStore writes every
// lead to the local archive and, when a remote backend is configured, to the
// remote document store as well.
package leads

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/navarrastar/mentorship-landing/pkg/models"
	"github.com/navarrastar/mentorship-landing/pkg/storage"
)

// Record is one lead submission on its way to the stores
type Record struct {
	ID          string
	Lead        models.LeadSubmission
	SubmittedAt time.Time
}

// Store appends lead records to one backend
type Store interface {
	Append(ctx context.Context, rec Record) error
}

// LocalStore keeps the lead archive as a JSON array in the key-value store.
// Append is a read-modify-write of the whole array, serialized within the
// process; writers in other processes sharing the file can still lose updates.
type LocalStore struct {
	kv storage.Store
	mu sync.Mutex
}

func NewLocalStore(kv storage.Store) *LocalStore {
	return &LocalStore{kv: kv}
}

func (s *LocalStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	archive, err := s.List(ctx)
	if err != nil {
		return err
	}

	archive = append(archive, models.ArchivedLead{
		ID:             rec.ID,
		LeadSubmission: rec.Lead,
		Source:         models.LeadSource,
		SubmittedAt:    rec.SubmittedAt.Format(time.RFC3339),
	})

	if err := storage.SetJSON(ctx, s.kv, storage.KeyLeadArchive, archive); err != nil {
		return fmt.Errorf("error writing lead archive: %w", err)
	}
	return nil
}

// List returns the archive in submission order
func (s *LocalStore) List(ctx context.Context) ([]models.ArchivedLead, error) {
	var archive []models.ArchivedLead
	if _, err := storage.GetJSON(ctx, s.kv, storage.KeyLeadArchive, &archive); err != nil {
		return nil, fmt.Errorf("error reading lead archive: %w", err)
	}
	return archive, nil
}

// FanoutStore writes to the local archive unconditionally and then to the
// remote store if one is configured. Local failures are logged, never returned.
type FanoutStore struct {
	local  Store
	remote Store
	logger *slog.Logger
}

// NewFanoutStore builds the composite store. remote may be nil, which disables
// the remote path.
func NewFanoutStore(local, remote Store) *FanoutStore {
	return &FanoutStore{
		local:  local,
		remote: remote,
		logger: slog.Default().With("component", "leads"),
	}
}

// RemoteEnabled reports whether a remote store is configured
func (f *FanoutStore) RemoteEnabled() bool {
	return f.remote != nil
}

func (f *FanoutStore) Append(ctx context.Context, rec Record) error {
	if err := f.local.Append(ctx, rec); err != nil {
		f.logger.Warn("local lead archive write failed", "lead", rec.ID, "error", err)
	}

	if f.remote == nil {
		return nil
	}
	return f.remote.Append(ctx, rec)
}
