package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/f880guardian/audit-engine/pkg/ai"
	"github.com/f880guardian/audit-engine/pkg/catalog"
	"github.com/f880guardian/audit-engine/pkg/config"
	"github.com/f880guardian/audit-engine/pkg/handlers"
	"github.com/f880guardian/audit-engine/pkg/logging"
	"github.com/f880guardian/audit-engine/pkg/store"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Log startup configuration
	log.Printf("Configuration loaded:")
	log.Printf("  Environment: %s", cfg.Env)
	log.Printf("  Cache: %s", cfg.Cache.Path)
	log.Printf("  Remote endpoint: %s", logging.SanitizeURL(cfg.Remote.Endpoint))
	log.Printf("  AI provider: %s (configured: %v)", cfg.AI.Provider, cfg.AI.Configured())

	// Question catalog: built-in F880 set unless a custom file is configured
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	}

	// Local durable cache
	cache, err := store.OpenCache(cfg.Cache.Path, logger)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer func() { _ = cache.Close() }()

	// Remote endpoint: configuration wins over the cached slot; a configured
	// value is persisted for later sessions.
	endpoint := cfg.Remote.Endpoint
	if endpoint != "" {
		if err := cache.SetEndpoint(endpoint); err != nil {
			logger.Warn("Failed to persist remote endpoint", zap.Error(err))
		}
	} else {
		endpoint = cache.Endpoint()
	}

	var remote store.RemoteStore
	if endpoint != "" {
		remote = store.NewRemoteClient(endpoint,
			time.Duration(cfg.Remote.TimeoutSeconds)*time.Second, logger)
	}

	recordStore := store.NewRecordStore(cache, remote, logger)

	// Warm the in-memory collection: remote when reachable, cache otherwise.
	records := recordStore.LoadAll(context.Background())
	logger.Info("Record collection loaded", zap.Int("count", len(records)))

	// AI boundary: nil client means placeholder summaries
	aiClient, err := ai.NewClient(&cfg.AI, logger)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}
	advisor := ai.NewAdvisor(aiClient, logger)

	mux := http.NewServeMux()

	// Register handlers
	healthHandler := handlers.NewHealthHandler(cfg, recordStore, logger)
	healthHandler.RegisterRoutes(mux)

	recordsHandler := handlers.NewRecordsHandler(recordStore, advisor, cat, cfg.DefaultFacility, logger)
	recordsHandler.RegisterRoutes(mux)

	auditsHandler := handlers.NewAuditsHandler(recordStore, advisor, cat, cfg.DefaultFacility, logger)
	auditsHandler.RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	log.Printf("Starting audit-engine on %s (version: %s)", addr, cfg.Version)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
