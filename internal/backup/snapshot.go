// Package backup takes point-in-time snapshots of a SQLite relationship
// store and prunes old snapshots.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	filePrefix = "kindred-"
	fileSuffix = ".db"
	timeLayout = "20060102-150405.000"
)

// Snapshot describes one snapshot file.
type Snapshot struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
	Verified  bool      `json:"verified"`
}

// Result is returned by Take.
type Result struct {
	Snapshot
	Duration time.Duration `json:"duration_ms"`
	Pruned   []string      `json:"pruned,omitempty"`
}

// Options controls Take.
type Options struct {
	// Dir receives the snapshot file. It is created if missing.
	Dir string

	// Keep is the number of newest snapshots retained after this one is
	// written. Zero keeps everything.
	Keep int

	// Now overrides the clock for file naming.
	Now func() time.Time
}

// Take writes a consistent copy of db into opts.Dir using VACUUM INTO,
// verifies it with an integrity check and applies the retention count.
// db is the store's own handle, so the copy reflects every committed write.
func Take(ctx context.Context, db *sql.DB, opts Options) (*Result, error) {
	start := time.Now()
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	ts := now().UTC()
	path := filepath.Join(opts.Dir, filePrefix+ts.Format(timeLayout)+fileSuffix)
	if _, err := db.ExecContext(ctx, "VACUUM INTO '"+strings.ReplaceAll(path, "'", "''")+"'"); err != nil {
		return nil, fmt.Errorf("failed to snapshot database: %w", err)
	}

	if err := Verify(ctx, path); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	result := &Result{
		Snapshot: Snapshot{Path: path, Timestamp: ts, Size: info.Size(), Verified: true},
	}
	if opts.Keep > 0 {
		if result.Pruned, err = Prune(opts.Dir, opts.Keep); err != nil {
			return result, err
		}
	}
	result.Duration = time.Since(start)
	return result, nil
}

// Verify runs SQLite's integrity check against the file at path.
func Verify(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to run integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// List returns the snapshots in dir, newest first. Files not written by
// Take are ignored.
func List(dir string) ([]Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var out []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ts, err := time.Parse(timeLayout, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // Skip files we can't stat
		}
		out = append(out, Snapshot{Path: filepath.Join(dir, name), Timestamp: ts, Size: info.Size()})
	}

	slices.SortFunc(out, func(a, b Snapshot) int { return b.Timestamp.Compare(a.Timestamp) })
	return out, nil
}

// Prune deletes all but the keep newest snapshots in dir and returns the
// removed paths.
func Prune(dir string, keep int) ([]string, error) {
	snapshots, err := List(dir)
	if err != nil {
		return nil, err
	}
	if keep < 0 || len(snapshots) <= keep {
		return nil, nil
	}

	var removed []string
	var lastErr error
	for _, s := range snapshots[keep:] {
		if err := os.Remove(s.Path); err != nil {
			// Continue deleting other snapshots even if one fails
			lastErr = err
			continue
		}
		removed = append(removed, s.Path)
	}
	if lastErr != nil {
		return removed, fmt.Errorf("failed to delete some snapshots: %w", lastErr)
	}
	return removed, nil
}
