package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/scrypster/kindred/internal/cache"
	"github.com/scrypster/kindred/internal/config"
	"github.com/scrypster/kindred/internal/engine"
	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/internal/storage/neo4j"
	"github.com/scrypster/kindred/internal/storage/postgres"
	"github.com/scrypster/kindred/internal/storage/sqlite"
	"github.com/scrypster/kindred/web/handlers"
)

// openStore opens the backend selected by storage.engine.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.ReadWriteStore, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		return postgres.NewRelationshipStore(cfg.Storage.PostgresDSN)
	case "neo4j":
		return neo4j.NewRelationshipStore(ctx, neo4j.Config{
			URI:      cfg.Storage.Neo4jURI,
			Username: cfg.Storage.Neo4jUser,
			Password: cfg.Storage.Neo4jPassword,
			Database: cfg.Storage.Neo4jDatabase,
		}, logger)
	case "sqlite", "":
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return sqlite.NewRelationshipStore(cfg.Storage.SQLitePath(), logger)
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.StorageEngine)
	}
}

// engineConfig maps configured depth limits onto the engine. Zero values
// fall back to the built-in limits during normalization.
func engineConfig(cfg *config.Config) engine.Config {
	ec := engine.Config{
		Classify: engine.DepthLimits{
			Default: cfg.Engine.ClassifyDefaultDepth,
			Ceiling: cfg.Engine.ClassifyMaxDepth,
		},
		Resolve: engine.DepthLimits{
			Default: cfg.Engine.ResolveDefaultDepth,
			Ceiling: cfg.Engine.ResolveMaxDepth,
		},
		SiblingPolicy: engine.SiblingsExplicitAndDerived,
	}
	if cfg.Engine.ExplicitSiblingsOnly {
		ec.SiblingPolicy = engine.SiblingsExplicitOnly
	}
	ec.Normalize()
	return ec
}

func breakerConfig(cfg *config.Config) storage.BreakerConfig {
	return storage.BreakerConfig{
		MaxFailures: cfg.Breaker.MaxFailures,
		Timeout:     cfg.Breaker.Timeout,
	}
}

// kinshipStack is the assembled read path.
type kinshipStack struct {
	engine  *engine.KinshipEngine
	service handlers.KinshipService
	cache   *cache.KinshipCache // nil when caching is disabled
}

// purger returns the cache as a handlers.Purger, or nil.
func (k kinshipStack) purger() handlers.Purger {
	if k.cache == nil {
		return nil
	}
	return k.cache
}

// buildKinship layers breaker, engine and optional cache over store.
func buildKinship(store storage.RelationshipStore, cfg *config.Config, logger *slog.Logger) kinshipStack {
	reader := store
	if cfg.Breaker.Enabled {
		reader = storage.NewBreakerStore(store, breakerConfig(cfg), logger)
	}

	eng := engine.NewKinshipEngine(reader, engineConfig(cfg), logger)
	stack := kinshipStack{engine: eng, service: eng}
	if cfg.Cache.Enabled {
		stack.cache = cache.NewKinshipCache(eng, eng.Config(), cfg.Cache.Size, cfg.Cache.TTL)
		stack.service = stack.cache
	}
	return stack
}
