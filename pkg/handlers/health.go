package handlers

import (
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/config"
	"github.com/f880guardian/audit-engine/pkg/store"
)

// PingResponse contains service status, version information and the state of
// the persistence and AI boundaries.
type PingResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	Service          string `json:"service"`
	GoVersion        string `json:"go_version"`
	Hostname         string `json:"hostname"`
	Environment      string `json:"environment"`
	Records          int    `json:"records"`
	RemoteConfigured bool   `json:"remote_configured"`
	AIConfigured     bool   `json:"ai_configured"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	store  *store.RecordStore
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler over the given configuration
// and record store.
func NewHealthHandler(cfg *config.Config, recordStore *store.RecordStore, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, store: recordStore, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ping", h.Ping)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests. Beyond version and environment it reports
// how many completed records are loaded and whether the remote sheet and the
// AI service are configured, so a glance shows which degraded mode (if any)
// the engine is running in.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:           "ok",
		Version:          h.cfg.Version,
		Service:          "audit-engine",
		GoVersion:        runtime.Version(),
		Hostname:         hostname,
		Environment:      h.cfg.Env,
		Records:          h.store.Count(),
		RemoteConfigured: h.store.RemoteConfigured(),
		AIConfigured:     h.cfg.AI.Configured(),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
