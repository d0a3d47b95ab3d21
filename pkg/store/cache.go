// Package store persists completed audit records. It combines a sqlite-backed
// local cache (always written first, authoritative for the device) with a
// best-effort remote sheet store that may be unreachable or unconfigured.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/f880guardian/audit-engine/pkg/models"
)

// Slot keys mirror the two storage keys of the original client: the full
// serialized record collection and the configured remote endpoint URL.
const (
	slotRecords  = "audit_collection"
	slotEndpoint = "remote_endpoint"
)

// Cache is the local durable fallback store. All reads degrade to "absent"
// on corruption; the read path never fails a round.
type Cache struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenCache opens (or creates) the sqlite cache file at path.
func OpenCache(path string, logger *zap.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS slots (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Cache{db: db, logger: logger.Named("cache")}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// LoadRecords returns the cached record collection. A missing or unparseable
// slot yields an empty collection, never an error.
func (c *Cache) LoadRecords() []*models.AuditRecord {
	raw, ok := c.get(slotRecords)
	if !ok {
		return nil
	}

	var records []*models.AuditRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		c.logger.Warn("Cached record collection is corrupt, treating as empty",
			zap.Error(err))
		return nil
	}
	return records
}

// SaveRecords overwrites the cached record collection. This is the local
// durability guarantee: it completes before any remote replication is
// attempted.
func (c *Cache) SaveRecords(records []*models.AuditRecord) error {
	if records == nil {
		records = []*models.AuditRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode record collection: %w", err)
	}
	return c.set(slotRecords, string(data))
}

// Endpoint returns the remote endpoint URL stored in the cache, or "" if
// none was ever saved.
func (c *Cache) Endpoint() string {
	v, _ := c.get(slotEndpoint)
	return v
}

// SetEndpoint stores the remote endpoint URL for later sessions.
func (c *Cache) SetEndpoint(url string) error {
	return c.set(slotEndpoint, url)
}

func (c *Cache) get(key string) (string, bool) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("Cache read failed, treating slot as absent",
			zap.String("key", key),
			zap.Error(err))
		return "", false
	}
	return value, true
}

func (c *Cache) set(key, value string) error {
	_, err := c.db.Exec(
		`INSERT INTO slots (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("write cache slot %s: %w", key, err)
	}
	return nil
}
