// Package sqlite provides a SQLite implementation of the relationship store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// RelationshipStore implements storage.ReadWriteStore using SQLite.
type RelationshipStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRelationshipStore creates a new SQLite relationship store with WAL
// self-healing. If the initial open fails due to stale WAL files (left
// behind by a crashed process), it verifies no other process holds them and
// retries once after removing the stale -shm/-wal files.
func NewRelationshipStore(dsn string, logger *slog.Logger) (*RelationshipStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := openRelationshipStore(dsn, logger)
	if err == nil {
		return store, nil
	}

	if !isRecoverableWALError(err) {
		return nil, err
	}

	dbPath := dbPathFromDSN(dsn)
	if dbPath == "" || !isWALStale(dbPath) {
		return nil, err
	}

	removeStaleWAL(dbPath, logger)

	store, retryErr := openRelationshipStore(dsn, logger)
	if retryErr != nil {
		return nil, fmt.Errorf("failed after WAL recovery: %w (original: %v)", retryErr, err)
	}

	logger.Info("sqlite: recovered from stale WAL files", "path", dbPath)
	return store, nil
}

// openRelationshipStore opens a SQLite database, configures WAL mode, and creates the schema.
func openRelationshipStore(dsn string, logger *slog.Logger) (*RelationshipStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises access and avoids SQLITE_BUSY under concurrent load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &RelationshipStore{db: db, logger: logger}, nil
}

// GetDB returns the underlying database connection.
func (s *RelationshipStore) GetDB() *sql.DB {
	return s.db
}

// Close releases any resources held by the store.
func (s *RelationshipStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FetchEdgesTouching returns all edges where personID appears on either side.
func (s *RelationshipStore) FetchEdgesTouching(ctx context.Context, personID string) ([]types.RelationshipEdge, error) {
	if personID == "" {
		return nil, fmt.Errorf("%w: person id is required", storage.ErrInvalidInput)
	}

	edges, err := queryEdgesTouching(ctx, s.db, []string{personID})
	if err != nil {
		return nil, fmt.Errorf("sqlite: FetchEdgesTouching: %w", err)
	}
	return edges, nil
}

// FetchAllEdgesReachableFrom expands breadth-first from personID, one query
// per hop, inside a single transaction so every hop reads the same snapshot.
//
// Algorithm:
//  1. The frontier starts at personID.
//  2. For hop = 1..maxDepth, fetch every edge touching the frontier; the
//     unvisited endpoints become the next frontier.
//  3. Stop early when the frontier is empty.
//
// Edges touching people at distance maxDepth are not fetched: no path of at
// most maxDepth edges needs them.
func (s *RelationshipStore) FetchAllEdgesReachableFrom(ctx context.Context, personID string, maxDepth int) ([]types.RelationshipEdge, error) {
	if personID == "" {
		return nil, fmt.Errorf("%w: person id is required", storage.ErrInvalidInput)
	}
	if maxDepth < 1 {
		return []types.RelationshipEdge{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: FetchAllEdgesReachableFrom: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	frontier := storage.NewFrontier(personID)
	for hop := 1; hop <= maxDepth && !frontier.Done(); hop++ {
		edges, err := queryEdgesTouching(ctx, tx, frontier.Current())
		if err != nil {
			return nil, fmt.Errorf("sqlite: FetchAllEdgesReachableFrom hop %d: %w", hop, err)
		}
		frontier.Advance(edges)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: FetchAllEdgesReachableFrom: commit: %w", err)
	}
	return frontier.Edges(), nil
}

// GetPerson retrieves a person by ID.
func (s *RelationshipStore) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	var (
		p       types.Person
		name    sql.NullString
		gender  string
		isAlive int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, gender, is_alive
		FROM persons
		WHERE id = ?
	`, id).Scan(&p.ID, &name, &gender, &isAlive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: GetPerson: %w", err)
	}

	p.DisplayName = name.String
	p.Gender = types.NormalizeGender(types.Gender(gender))
	p.IsAlive = isAlive != 0
	return &p, nil
}

// StorePerson creates or updates a person (upsert semantics).
func (s *RelationshipStore) StorePerson(ctx context.Context, person *types.Person) error {
	if err := storage.ValidatePerson(person); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO persons (id, display_name, gender, is_alive, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			gender = excluded.gender,
			is_alive = excluded.is_alive,
			updated_at = excluded.updated_at
	`, person.ID, nullableString(person.DisplayName), string(types.NormalizeGender(person.Gender)),
		boolToInt(person.IsAlive), now, now)
	if err != nil {
		return fmt.Errorf("sqlite: StorePerson: %w", err)
	}
	return nil
}

// StoreRelationship creates an edge; existing (person_a, person_b, type)
// rows are left untouched. Symmetric edges stored in either column order
// count as the same edge.
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

	key := edge.Key()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO relationships (id, person_a, person_b, type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, edge.ID, key.A, key.B, string(edge.Type), edge.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: StoreRelationship: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: StoreRelationship: rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Already stored: report the existing row.
	err = s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM relationships WHERE person_a = ? AND person_b = ? AND type = ?",
		key.A, key.B, string(edge.Type)).Scan(&edge.ID, &edge.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: relationship id %q already in use", storage.ErrInvalidInput, edge.ID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: StoreRelationship: lookup existing: %w", err)
	}
	return nil
}

// DeleteRelationship removes an edge by its row ID.
func (s *RelationshipStore) DeleteRelationship(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: DeleteRelationship: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: DeleteRelationship: rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryEdgesTouching returns every edge with either endpoint in ids.
func queryEdgesTouching(ctx context.Context, q queryer, ids []string) ([]types.RelationshipEdge, error) {
	if len(ids) == 0 {
		return []types.RelationshipEdge{}, nil
	}

	ph := storage.Placeholders(len(ids))
	query := `
		SELECT id, person_a, person_b, type, created_at
		FROM relationships
		WHERE person_a IN (` + ph + `) OR person_b IN (` + ph + `)
		ORDER BY id
	`
	args := make([]any, 0, 2*len(ids))
	for i := 0; i < 2; i++ {
		for _, id := range ids {
			args = append(args, id)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	edges := make([]types.RelationshipEdge, 0)
	for rows.Next() {
		var (
			e       types.RelationshipEdge
			relType string
		)
		if err := rows.Scan(&e.ID, &e.PersonA, &e.PersonB, &relType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		e.Type = types.EdgeType(relType)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableString converts a string to sql.NullString.
// An empty string is treated as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// dbPathFromDSN extracts the filesystem path from a SQLite DSN.
// Handles bare paths ("/path/to/db.sqlite") and file: URIs ("file:/path/to/db.sqlite?mode=rwc").
// Returns empty string for in-memory databases or unparseable DSNs.
func dbPathFromDSN(dsn string) string {
	if dsn == ":memory:" || dsn == "" {
		return ""
	}

	if strings.HasPrefix(dsn, "file:") {
		u, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == ":memory:" || path == "" {
			return ""
		}
		return path
	}

	return dsn
}

// isRecoverableWALError returns true if the error matches patterns caused by
// stale WAL files left behind after a crash.
func isRecoverableWALError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "disk I/O error") ||
		strings.Contains(msg, "database is locked")
}

// isWALStale checks whether -shm/-wal files exist for the given database path
// and no other process currently holds them open. Returns false if lsof is
// unavailable.
func isWALStale(dbPath string) bool {
	shmPath := dbPath + "-shm"
	walPath := dbPath + "-wal"

	if !fileExists(shmPath) && !fileExists(walPath) {
		return false
	}

	lsofPath, err := exec.LookPath("lsof")
	if err != nil {
		return false
	}

	output, err := exec.Command(lsofPath, "-t", dbPath, shmPath, walPath).Output()
	if err != nil {
		// lsof exits 1 when no process has the files open.
		return true
	}
	return strings.TrimSpace(string(output)) == ""
}

// removeStaleWAL removes -shm and -wal files for the given database path.
func removeStaleWAL(dbPath string, logger *slog.Logger) {
	for _, suffix := range []string{"-shm", "-wal"} {
		path := dbPath + suffix
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("sqlite: failed to remove stale WAL file", "path", path, "error", err)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
