package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kindred/internal/engine"
	"github.com/scrypster/kindred/pkg/types"
)

// countingKinship records calls and answers from a real engine.
type countingKinship struct {
	inner         Kinship
	classifyCalls int
	resolveCalls  int
	err           error
}

func (c *countingKinship) ClassifyKin(ctx context.Context, req engine.ClassifyRequest) (*types.KinSummary, error) {
	c.classifyCalls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.ClassifyKin(ctx, req)
}

func (c *countingKinship) ResolveKinship(ctx context.Context, req engine.ResolveRequest) (*types.Resolution, error) {
	c.resolveCalls++
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.ResolveKinship(ctx, req)
}

// edgeStore is a minimal read-only store for building a real engine.
type edgeStore struct {
	edges []types.RelationshipEdge
}

func (s *edgeStore) FetchEdgesTouching(ctx context.Context, id string) ([]types.RelationshipEdge, error) {
	return s.edges, nil
}

func (s *edgeStore) FetchAllEdgesReachableFrom(ctx context.Context, id string, maxDepth int) ([]types.RelationshipEdge, error) {
	return s.edges, nil
}

func (s *edgeStore) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	g := types.GenderFemale
	if id == "kid" {
		g = types.GenderMale
	}
	return &types.Person{ID: id, DisplayName: id, Gender: g, IsAlive: true}, nil
}

func (s *edgeStore) Close() error { return nil }

func newTestCache(t *testing.T) (*KinshipCache, *countingKinship, *engine.KinshipEngine) {
	t.Helper()
	store := &edgeStore{edges: []types.RelationshipEdge{
		{PersonA: "gran", PersonB: "mom", Type: types.EdgeParent},
		{PersonA: "mom", PersonB: "kid", Type: types.EdgeParent},
	}}
	eng := engine.NewKinshipEngine(store, engine.DefaultConfig(), nil)
	counting := &countingKinship{inner: eng}
	return NewKinshipCache(counting, engine.DefaultConfig(), 16, time.Minute), counting, eng
}

func intPtr(n int) *int { return &n }

func TestKinshipCache_ClassifyHit(t *testing.T) {
	c, counting, _ := newTestCache(t)
	ctx := context.Background()

	first, err := c.ClassifyKin(ctx, engine.ClassifyRequest{RootID: "kid"})
	require.NoError(t, err)
	second, err := c.ClassifyKin(ctx, engine.ClassifyRequest{RootID: "kid", MaxDepth: intPtr(engine.DefaultClassifyDepth)})
	require.NoError(t, err)

	assert.Same(t, first, second, "omitted depth and explicit default share an entry")
	assert.Equal(t, 1, counting.classifyCalls)

	_, err = c.ClassifyKin(ctx, engine.ClassifyRequest{RootID: "kid", MaxDepth: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, counting.classifyCalls)
}

func TestKinshipCache_ResolveMirrorsOnRead(t *testing.T) {
	c, counting, eng := newTestCache(t)
	ctx := context.Background()

	forward, err := c.ResolveKinship(ctx, engine.ResolveRequest{PersonAID: "gran", PersonBID: "kid"})
	require.NoError(t, err)
	assert.Equal(t, "grandparent", forward.Term)

	backward, err := c.ResolveKinship(ctx, engine.ResolveRequest{PersonAID: "kid", PersonBID: "gran"})
	require.NoError(t, err)
	assert.Equal(t, 1, counting.resolveCalls, "reverse request served from cache")

	direct, err := eng.ResolveKinship(ctx, engine.ResolveRequest{PersonAID: "kid", PersonBID: "gran"})
	require.NoError(t, err)
	assert.Equal(t, direct, backward)
	assert.Equal(t, "grandchild", backward.Term)
	assert.Equal(t, "grandson", backward.DisplayTerm)
}

func TestKinshipCache_StoresCanonicalOrientation(t *testing.T) {
	c, counting, _ := newTestCache(t)
	ctx := context.Background()

	// First request arrives in non-canonical orientation.
	first, err := c.ResolveKinship(ctx, engine.ResolveRequest{PersonAID: "kid", PersonBID: "gran"})
	require.NoError(t, err)
	assert.Equal(t, "grandchild", first.Term)

	second, err := c.ResolveKinship(ctx, engine.ResolveRequest{PersonAID: "gran", PersonBID: "kid"})
	require.NoError(t, err)
	assert.Equal(t, 1, counting.resolveCalls)
	assert.Equal(t, "grandparent", second.Term)
	assert.Equal(t, "grandmother", second.DisplayTerm)
}

func TestKinshipCache_ErrorsAreNotCached(t *testing.T) {
	c, counting, _ := newTestCache(t)
	ctx := context.Background()
	counting.err = errors.New("store down")

	_, err := c.ResolveKinship(ctx, engine.ResolveRequest{PersonAID: "a", PersonBID: "b"})
	require.Error(t, err)
	_, err = c.ResolveKinship(ctx, engine.ResolveRequest{PersonAID: "a", PersonBID: "b"})
	require.Error(t, err)
	assert.Equal(t, 2, counting.resolveCalls)

	classify, resolve := c.Len()
	assert.Zero(t, classify)
	assert.Zero(t, resolve)
}

func TestKinshipCache_InvalidDepthPassesThrough(t *testing.T) {
	c, counting, _ := newTestCache(t)
	_, err := c.ResolveKinship(context.Background(), engine.ResolveRequest{PersonAID: "a", PersonBID: "b", MaxDepth: intPtr(0)})
	assert.ErrorIs(t, err, engine.ErrInvalidDepth)
	assert.Equal(t, 1, counting.resolveCalls)
}

func TestKinshipCache_Purge(t *testing.T) {
	c, counting, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.ClassifyKin(ctx, engine.ClassifyRequest{RootID: "kid"})
	require.NoError(t, err)
	c.Purge()
	_, err = c.ClassifyKin(ctx, engine.ClassifyRequest{RootID: "kid"})
	require.NoError(t, err)
	assert.Equal(t, 2, counting.classifyCalls)
}

func TestKinshipCache_Expires(t *testing.T) {
	store := &edgeStore{}
	counting := &countingKinship{inner: engine.NewKinshipEngine(store, engine.DefaultConfig(), nil)}
	c := NewKinshipCache(counting, engine.DefaultConfig(), 4, 20*time.Millisecond)
	ctx := context.Background()

	_, err := c.ClassifyKin(ctx, engine.ClassifyRequest{RootID: "kid"})
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = c.ClassifyKin(ctx, engine.ClassifyRequest{RootID: "kid"})
	require.NoError(t, err)
	assert.Equal(t, 2, counting.classifyCalls)
}
