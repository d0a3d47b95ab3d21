package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/apperrors"
	"github.com/f880guardian/audit-engine/pkg/models"
)

// RemoteStore is the remote half of the persistence boundary. A nil remote
// means no endpoint is configured, which is a valid mode: the local cache
// becomes the sole storage.
type RemoteStore interface {
	FetchAll(ctx context.Context) ([]*models.AuditRecord, error)
	Push(ctx context.Context, record *models.AuditRecord) error
}

// RecordStore is the single source of truth for the completed-record
// collection. All mutation goes through Save and UpdateAnalysis; readers only
// ever see snapshots.
//
// The write policy is optimistic: the local cache is written synchronously
// before any remote replication is attempted, and a remote failure never
// rolls back the local write or surfaces to the caller. Across devices the
// last remote write wins; there is no merge strategy.
type RecordStore struct {
	mu      sync.RWMutex
	records []*models.AuditRecord

	cache  *Cache
	remote RemoteStore
	logger *zap.Logger
}

// NewRecordStore creates the facade over the given cache and optional remote.
func NewRecordStore(cache *Cache, remote RemoteStore, logger *zap.Logger) *RecordStore {
	return &RecordStore{
		cache:  cache,
		remote: remote,
		logger: logger.Named("record-store"),
	}
}

// LoadAll populates the in-memory collection and returns a snapshot of it.
//
// With a remote configured it fetches the shared collection and overwrites
// the local cache on success. On fetch failure, or with no remote at all, the
// cache contents are used instead. LoadAll never fails: every degraded path
// ends in a (possibly empty) collection.
func (s *RecordStore) LoadAll(ctx context.Context) []*models.AuditRecord {
	if s.remote != nil {
		records, err := s.remote.FetchAll(ctx)
		if err == nil {
			records = completedOnly(records)
			if cerr := s.cache.SaveRecords(records); cerr != nil {
				s.logger.Warn("Failed to back up fetched records to cache", zap.Error(cerr))
			}
			s.mu.Lock()
			s.records = records
			s.mu.Unlock()
			return s.snapshot("")
		}
		s.logger.Warn("Remote fetch failed, falling back to local cache", zap.Error(err))
	}

	records := completedOnly(s.cache.LoadRecords())
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return s.snapshot("")
}

// completedOnly drops records that never reached completion. Other devices
// sharing the remote collection may write drafts; only completed rounds are
// part of history, dashboards, and exports.
func completedOnly(records []*models.AuditRecord) []*models.AuditRecord {
	out := make([]*models.AuditRecord, 0, len(records))
	for _, r := range records {
		if r != nil && r.Status == models.AuditCompleted {
			out = append(out, r)
		}
	}
	return out
}

// Save commits a completed record: upsert into the in-memory collection and
// the local cache synchronously, then a best-effort remote push. The caller
// only awaits local durability; remote failures are logged and swallowed.
func (s *RecordStore) Save(ctx context.Context, record *models.AuditRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("record id is required")
	}
	if record.Status != models.AuditCompleted {
		return fmt.Errorf("only completed records are persisted")
	}

	s.mu.Lock()
	s.upsertLocked(record)
	err := s.cache.SaveRecords(s.records)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("persist record locally: %w", err)
	}

	s.pushBestEffort(ctx, record)
	return nil
}

// UpdateAnalysis attaches an AI summary to an existing record. The summary is
// the only field that may change after completion. The mutated record is
// persisted to the cache and pushed best-effort; no full remote resync runs.
func (s *RecordStore) UpdateAnalysis(ctx context.Context, id string, analysis string) error {
	s.mu.Lock()
	var updated *models.AuditRecord
	for _, r := range s.records {
		if r.ID == id {
			r.AIAnalysis = analysis
			updated = r
			break
		}
	}
	if updated == nil {
		s.mu.Unlock()
		return fmt.Errorf("record %s: %w", id, apperrors.ErrNotFound)
	}
	err := s.cache.SaveRecords(s.records)
	pushCopy := *updated
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("persist analysis locally: %w", err)
	}

	s.pushBestEffort(ctx, &pushCopy)
	return nil
}

// Records returns a snapshot of the completed records, optionally filtered by
// facility. An empty facility selects all records.
func (s *RecordStore) Records(facility string) []*models.AuditRecord {
	return s.snapshot(facility)
}

// Count returns the number of completed records currently held.
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// RemoteConfigured reports whether a remote store is attached.
func (s *RecordStore) RemoteConfigured() bool {
	return s.remote != nil
}

// Get returns a copy of the record with the given id.
func (s *RecordStore) Get(id string) (*models.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			clone := *r
			clone.Responses = append([]models.Response(nil), r.Responses...)
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("record %s: %w", id, apperrors.ErrNotFound)
}

// upsertLocked replaces the record with the same id, or prepends a new one so
// the most recent round lists first. Callers must hold the write lock.
func (s *RecordStore) upsertLocked(record *models.AuditRecord) {
	for i, r := range s.records {
		if r.ID == record.ID {
			s.records[i] = record
			return
		}
	}
	s.records = append([]*models.AuditRecord{record}, s.records...)
}

func (s *RecordStore) pushBestEffort(ctx context.Context, record *models.AuditRecord) {
	if s.remote == nil {
		return
	}
	if err := s.remote.Push(ctx, record); err != nil {
		s.logger.Warn("Remote push failed, record remains cached locally",
			zap.String("record_id", record.ID),
			zap.Error(err))
	}
}

func (s *RecordStore) snapshot(facility string) []*models.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AuditRecord, 0, len(s.records))
	for _, r := range s.records {
		if facility != "" && r.FacilityName != facility {
			continue
		}
		clone := *r
		clone.Responses = append([]models.Response(nil), r.Responses...)
		out = append(out, &clone)
	}
	return out
}
