// Package cache memoizes kinship results for a short time in front of the
// engine. The engine itself never caches: the relationship graph may change
// between requests, so entries expire after a short TTL.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/scrypster/kindred/internal/engine"
	"github.com/scrypster/kindred/pkg/types"
)

const (
	// DefaultSize is the entry limit used when size is not positive.
	DefaultSize = 1024

	// DefaultTTL is the lifetime used when ttl is not positive.
	DefaultTTL = 30 * time.Second
)

var cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kindred_cache_requests_total",
	Help: "Kinship cache lookups by operation and result",
}, []string{"op", "result"})

// Kinship is the pair of operations the cache sits in front of.
type Kinship interface {
	ClassifyKin(ctx context.Context, req engine.ClassifyRequest) (*types.KinSummary, error)
	ResolveKinship(ctx context.Context, req engine.ResolveRequest) (*types.Resolution, error)
}

type classifyKey struct {
	rootID   string
	maxDepth int
}

// resolveKey is always stored with lo <= hi.
type resolveKey struct {
	lo, hi   string
	maxDepth int
}

// KinshipCache wraps a Kinship with expiring LRU caches.
//
// Resolutions are cached in canonical orientation (smaller id first) and
// mirrored on the way out, so (A, B) and (B, A) share one entry. Returned
// values are shared between callers and must not be modified.
type KinshipCache struct {
	next     Kinship
	limits   engine.Config
	classify *expirable.LRU[classifyKey, *types.KinSummary]
	resolve  *expirable.LRU[resolveKey, *types.Resolution]
}

// NewKinshipCache creates a cache in front of next. limits must match the
// engine's configuration so that an omitted depth and the explicit default
// depth share an entry.
func NewKinshipCache(next Kinship, limits engine.Config, size int, ttl time.Duration) *KinshipCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	limits.Normalize()
	return &KinshipCache{
		next:     next,
		limits:   limits,
		classify: expirable.NewLRU[classifyKey, *types.KinSummary](size, nil, ttl),
		resolve:  expirable.NewLRU[resolveKey, *types.Resolution](size, nil, ttl),
	}
}

// ClassifyKin returns a cached summary or computes and stores one.
func (c *KinshipCache) ClassifyKin(ctx context.Context, req engine.ClassifyRequest) (*types.KinSummary, error) {
	depth, err := c.limits.Classify.Resolve(req.MaxDepth)
	if err != nil {
		// Let the engine produce and count the validation error.
		return c.next.ClassifyKin(ctx, req)
	}

	key := classifyKey{rootID: req.RootID, maxDepth: depth}
	if summary, ok := c.classify.Get(key); ok {
		cacheRequests.WithLabelValues("classify", "hit").Inc()
		return summary, nil
	}
	cacheRequests.WithLabelValues("classify", "miss").Inc()

	summary, err := c.next.ClassifyKin(ctx, req)
	if err != nil {
		return nil, err
	}
	c.classify.Add(key, summary)
	return summary, nil
}

// ResolveKinship returns a cached resolution, mirrored if the request is in
// the opposite orientation, or computes and stores one.
func (c *KinshipCache) ResolveKinship(ctx context.Context, req engine.ResolveRequest) (*types.Resolution, error) {
	depth, err := c.limits.Resolve.Resolve(req.MaxDepth)
	if err != nil {
		return c.next.ResolveKinship(ctx, req)
	}

	key := resolveKey{lo: req.PersonAID, hi: req.PersonBID, maxDepth: depth}
	swapped := key.hi < key.lo
	if swapped {
		key.lo, key.hi = key.hi, key.lo
	}

	if res, ok := c.resolve.Get(key); ok {
		cacheRequests.WithLabelValues("resolve", "hit").Inc()
		if swapped {
			return engine.MirrorResolution(res), nil
		}
		return res, nil
	}
	cacheRequests.WithLabelValues("resolve", "miss").Inc()

	res, err := c.next.ResolveKinship(ctx, req)
	if err != nil {
		return nil, err
	}
	canonical := res
	if swapped {
		canonical = engine.MirrorResolution(res)
	}
	c.resolve.Add(key, canonical)
	return res, nil
}

// Purge drops every entry. Writers call it after changing the graph.
func (c *KinshipCache) Purge() {
	c.classify.Purge()
	c.resolve.Purge()
}

// Len returns the number of cached classify and resolve entries.
func (c *KinshipCache) Len() (classify, resolve int) {
	return c.classify.Len(), c.resolve.Len()
}
