// Package storage provides composable storage interfaces for the Kindred
// relationship graph.
//
// The kinship engine only ever reads through RelationshipStore. Writes used
// by seeding, import and the HTTP API go through RelationshipWriter so that
// read-only deployments can implement the smaller interface.
package storage

import (
	"context"

	"github.com/scrypster/kindred/pkg/types"
)

// RelationshipStore is the read side of the relationship graph.
type RelationshipStore interface {
	// FetchEdgesTouching returns all edges where personID appears on either
	// side. Returns an empty slice (not an error) when there are none.
	FetchEdgesTouching(ctx context.Context, personID string) ([]types.RelationshipEdge, error)

	// FetchAllEdgesReachableFrom returns every edge touching a person within
	// maxDepth-1 undirected hops of personID, so that any path of at most
	// maxDepth edges starting at personID is fully contained in the result.
	// The result must be complete within the bound and read from a single
	// consistent snapshot.
	FetchAllEdgesReachableFrom(ctx context.Context, personID string, maxDepth int) ([]types.RelationshipEdge, error)

	// GetPerson retrieves a person by ID for display enrichment.
	// Returns ErrNotFound if the person doesn't exist.
	GetPerson(ctx context.Context, id string) (*types.Person, error)

	// Close releases any resources held by the store.
	Close() error
}

// RelationshipWriter is the write side of the relationship graph.
type RelationshipWriter interface {
	// StorePerson creates or updates a person (upsert semantics).
	StorePerson(ctx context.Context, person *types.Person) error

	// StoreRelationship creates an edge. Storing an edge that already exists
	// with the same endpoints and type is a no-op. An empty ID is filled in.
	StoreRelationship(ctx context.Context, edge *types.RelationshipEdge) error

	// DeleteRelationship removes an edge by its row ID.
	// Returns ErrNotFound if the edge doesn't exist.
	DeleteRelationship(ctx context.Context, id string) error
}

// ReadWriteStore is implemented by every bundled backend.
type ReadWriteStore interface {
	RelationshipStore
	RelationshipWriter
}
