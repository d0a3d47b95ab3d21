package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/logging"
	"github.com/f880guardian/audit-engine/pkg/models"
	"github.com/f880guardian/audit-engine/pkg/retry"
)

// RemoteClient talks to the deployed sheet web app. Reads return the full
// record collection; writes append or overwrite one record. The response
// body of a write is not interpreted beyond the status code.
type RemoteClient struct {
	endpoint   string
	httpClient *http.Client
	retryCfg   *retry.Config
	logger     *zap.Logger
}

// NewRemoteClient creates a client for the given endpoint. Every call is
// bounded by timeout so an unreachable endpoint cannot hang a round.
func NewRemoteClient(endpoint string, timeout time.Duration, logger *zap.Logger) *RemoteClient {
	return &RemoteClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retry.DefaultConfig(),
		logger:     logger.Named("remote"),
	}
}

// Endpoint returns the configured endpoint URL.
func (c *RemoteClient) Endpoint() string {
	return c.endpoint
}

// FetchAll retrieves the full record collection from the remote store. Any
// network error, non-2xx status, or malformed body is a fetch failure; the
// caller falls back to the local cache.
func (c *RemoteClient) FetchAll(ctx context.Context) ([]*models.AuditRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch records: unexpected status %d", resp.StatusCode)
	}

	var records []*models.AuditRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode record collection: %w", err)
	}

	c.logger.Debug("Fetched remote records",
		zap.Int("count", len(records)),
		zap.Duration("elapsed", time.Since(start)))
	return records, nil
}

// Push writes one record to the remote store. The body is {"record": ...}
// and the content type is text/plain to keep the request "simple" and avoid
// CORS preflight at the sheet web app. Transient failures are retried within
// a small bounded budget; the final error is still advisory to callers.
func (c *RemoteClient) Push(ctx context.Context, record *models.AuditRecord) error {
	body, err := json.Marshal(map[string]*models.AuditRecord{"record": record})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	return retry.Do(ctx, c.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build push request: %w", err)
		}
		req.Header.Set("Content-Type", "text/plain;charset=utf-8")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug("Remote push attempt failed",
				zap.String("record_id", record.ID),
				zap.String("error", logging.SanitizeError(err)))
			return fmt.Errorf("push record: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("push record: unexpected status %d", resp.StatusCode)
		}
		return nil
	})
}
