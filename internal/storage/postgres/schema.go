// Package postgres provides PostgreSQL implementations of storage interfaces.
package postgres

// Schema contains the SQL statements to create the relationship graph tables
// for PostgreSQL. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS persons (
    id TEXT PRIMARY KEY,
    display_name TEXT,
    gender TEXT NOT NULL DEFAULT 'unknown' CHECK (gender IN ('male', 'female', 'unknown')),
    is_alive BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Relationships are stored in canonical column order (see EdgeKey), so a
-- single unique constraint covers symmetric edges in either direction.
CREATE TABLE IF NOT EXISTS relationships (
    id TEXT PRIMARY KEY,
    person_a TEXT NOT NULL,
    person_b TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('parent', 'spouse', 'sibling')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (person_a, person_b, type)
);

CREATE INDEX IF NOT EXISTS idx_relationships_person_a ON relationships(person_a);
CREATE INDEX IF NOT EXISTS idx_relationships_person_b ON relationships(person_b);
`
