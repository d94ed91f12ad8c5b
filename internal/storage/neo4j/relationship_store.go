// Package neo4j provides a Neo4j implementation of the relationship store.
//
// People are (:Person {id}) nodes. Edges are PARENT_OF, SPOUSE_OF and
// SIBLING_OF relationships written in canonical direction, so a symmetric
// edge is stored once regardless of the order it was submitted in.
package neo4j

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// Relationship type names for each edge type.
const (
	relParentOf  = "PARENT_OF"
	relSpouseOf  = "SPOUSE_OF"
	relSiblingOf = "SIBLING_OF"
)

const constraintQuery = `CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE`

const edgesTouchingQuery = `
MATCH (a:Person)-[r:PARENT_OF|SPOUSE_OF|SIBLING_OF]->(b:Person)
WHERE a.id IN $ids OR b.id IN $ids
RETURN r.id AS id, a.id AS person_a, b.id AS person_b, type(r) AS rel_type, r.created_at AS created_at
ORDER BY id`

// Config holds connection settings for a Neo4j store.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// cypherRunner executes a query and returns every record. It is satisfied by
// the store itself (auto-commit queries) and by txRunner (one read
// transaction).
type cypherRunner interface {
	run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error)
}

// RelationshipStore implements storage.ReadWriteStore on top of Neo4j.
type RelationshipStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewRelationshipStore connects to Neo4j, verifies connectivity and ensures
// the person id uniqueness constraint exists.
func NewRelationshipStore(ctx context.Context, cfg Config, logger *slog.Logger) (*RelationshipStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: could not create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: connectivity check failed: %w", err)
	}

	s := &RelationshipStore{driver: driver, database: cfg.Database, logger: logger}
	if _, err := s.run(ctx, constraintQuery, nil); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: failed to create constraint: %w", err)
	}

	logger.Info("neo4j: connected", "uri", cfg.URI, "database", cfg.Database)
	return s, nil
}

// run executes an auto-commit query and buffers its records.
func (s *RelationshipStore) run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		s.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result.Records, nil
}

// txRunner runs queries inside a managed transaction.
type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (r txRunner) run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := r.tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// Close releases the driver.
func (s *RelationshipStore) Close() error {
	return s.driver.Close(context.Background())
}

// FetchEdgesTouching returns all edges where personID appears on either side.
func (s *RelationshipStore) FetchEdgesTouching(ctx context.Context, personID string) ([]types.RelationshipEdge, error) {
	if personID == "" {
		return nil, fmt.Errorf("%w: person id is required", storage.ErrInvalidInput)
	}
	edges, err := queryEdgesTouching(ctx, s, []string{personID})
	if err != nil {
		return nil, fmt.Errorf("neo4j: FetchEdgesTouching: %w", err)
	}
	return edges, nil
}

// FetchAllEdgesReachableFrom expands breadth-first from personID inside a
// single read transaction.
func (s *RelationshipStore) FetchAllEdgesReachableFrom(ctx context.Context, personID string, maxDepth int) ([]types.RelationshipEdge, error) {
	if personID == "" {
		return nil, fmt.Errorf("%w: person id is required", storage.ErrInvalidInput)
	}
	if maxDepth < 1 {
		return []types.RelationshipEdge{}, nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return expandFrontier(ctx, txRunner{tx: tx}, personID, maxDepth)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: FetchAllEdgesReachableFrom: %w", err)
	}
	return out.([]types.RelationshipEdge), nil
}

// expandFrontier issues one edges-touching query per hop until maxDepth hops
// have been fetched or nothing new is discovered.
func expandFrontier(ctx context.Context, r cypherRunner, personID string, maxDepth int) ([]types.RelationshipEdge, error) {
	frontier := storage.NewFrontier(personID)
	for hop := 1; hop <= maxDepth && !frontier.Done(); hop++ {
		edges, err := queryEdgesTouching(ctx, r, frontier.Current())
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", hop, err)
		}
		frontier.Advance(edges)
	}
	return frontier.Edges(), nil
}

// GetPerson returns the profile stored by StorePerson. Person nodes created
// implicitly by StoreRelationship have no profile and report ErrNotFound.
func (s *RelationshipStore) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	records, err := s.run(ctx, `
MATCH (p:Person {id: $id})
WHERE p.profile = true
RETURN p.id AS id, p.display_name AS display_name, p.gender AS gender, p.is_alive AS is_alive`,
		map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("neo4j: GetPerson: %w", err)
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return personFromRecord(records[0]), nil
}

// StorePerson creates or updates a person (upsert semantics).
func (s *RelationshipStore) StorePerson(ctx context.Context, person *types.Person) error {
	if err := storage.ValidatePerson(person); err != nil {
		return err
	}
	_, err := s.run(ctx, `
MERGE (p:Person {id: $id})
SET p.profile = true,
    p.display_name = $display_name,
    p.gender = $gender,
    p.is_alive = $is_alive,
    p.updated_at = $updated_at`,
		map[string]any{
			"id":           person.ID,
			"display_name": person.DisplayName,
			"gender":       string(types.NormalizeGender(person.Gender)),
			"is_alive":     person.IsAlive,
			"updated_at":   time.Now().UTC(),
		})
	if err != nil {
		return fmt.Errorf("neo4j: StorePerson: %w", err)
	}
	return nil
}

// StoreRelationship merges both person nodes and the edge between them.
// When the edge already exists its stored id is copied back into edge.ID.
func (s *RelationshipStore) StoreRelationship(ctx context.Context, edge *types.RelationshipEdge) error {
	if err := storage.ValidateEdge(edge); err != nil {
		return err
	}
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}

	rel, ok := relTypeFor(edge.Type)
	if !ok {
		return fmt.Errorf("%w: unknown edge type %q", storage.ErrInvalidInput, edge.Type)
	}
	key := edge.Key()

	// rel is one of three constants, never user input.
	query := fmt.Sprintf(`
MERGE (a:Person {id: $a})
MERGE (b:Person {id: $b})
MERGE (a)-[r:%s]->(b)
ON CREATE SET r.id = $id, r.created_at = $created_at
RETURN r.id AS id`, rel)

	records, err := s.run(ctx, query, map[string]any{
		"a":          key.A,
		"b":          key.B,
		"id":         edge.ID,
		"created_at": edge.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("neo4j: StoreRelationship: %w", err)
	}
	if len(records) > 0 {
		if id, ok := stringValue(records[0], "id"); ok && id != "" {
			edge.ID = id
		}
	}
	return nil
}

// DeleteRelationship removes an edge by its id property.
func (s *RelationshipStore) DeleteRelationship(ctx context.Context, id string) error {
	records, err := s.run(ctx, `
MATCH ()-[r:PARENT_OF|SPOUSE_OF|SIBLING_OF {id: $id}]->()
DELETE r
RETURN count(r) AS deleted`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("neo4j: DeleteRelationship: %w", err)
	}
	if len(records) == 0 {
		return storage.ErrNotFound
	}
	v, _ := records[0].Get("deleted")
	if n, ok := v.(int64); !ok || n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// queryEdgesTouching returns every edge with either endpoint in ids.
func queryEdgesTouching(ctx context.Context, r cypherRunner, ids []string) ([]types.RelationshipEdge, error) {
	if len(ids) == 0 {
		return []types.RelationshipEdge{}, nil
	}
	records, err := r.run(ctx, edgesTouchingQuery, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}

	edges := make([]types.RelationshipEdge, 0, len(records))
	for _, rec := range records {
		e, ok := edgeFromRecord(rec)
		if !ok {
			continue
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// edgeFromRecord decodes one row of edgesTouchingQuery. Rows with an unknown
// relationship type are skipped.
func edgeFromRecord(rec *neo4j.Record) (types.RelationshipEdge, bool) {
	relType, _ := stringValue(rec, "rel_type")
	edgeType, ok := edgeTypeFor(relType)
	if !ok {
		return types.RelationshipEdge{}, false
	}

	var e types.RelationshipEdge
	e.ID, _ = stringValue(rec, "id")
	e.PersonA, _ = stringValue(rec, "person_a")
	e.PersonB, _ = stringValue(rec, "person_b")
	e.Type = edgeType
	if v, ok := rec.Get("created_at"); ok {
		if t, ok := v.(time.Time); ok {
			e.CreatedAt = t
		}
	}
	return e, true
}

func personFromRecord(rec *neo4j.Record) *types.Person {
	var p types.Person
	p.ID, _ = stringValue(rec, "id")
	p.DisplayName, _ = stringValue(rec, "display_name")
	gender, _ := stringValue(rec, "gender")
	p.Gender = types.NormalizeGender(types.Gender(gender))
	p.IsAlive = true
	if v, ok := rec.Get("is_alive"); ok {
		if b, ok := v.(bool); ok {
			p.IsAlive = b
		}
	}
	return &p
}

func stringValue(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func relTypeFor(t types.EdgeType) (string, bool) {
	switch t {
	case types.EdgeParent:
		return relParentOf, true
	case types.EdgeSpouse:
		return relSpouseOf, true
	case types.EdgeSibling:
		return relSiblingOf, true
	}
	return "", false
}

func edgeTypeFor(rel string) (types.EdgeType, bool) {
	switch rel {
	case relParentOf:
		return types.EdgeParent, true
	case relSpouseOf:
		return types.EdgeSpouse, true
	case relSiblingOf:
		return types.EdgeSibling, true
	}
	return "", false
}
