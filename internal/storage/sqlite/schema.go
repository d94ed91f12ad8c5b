package sqlite

// Schema creates the persons and relationships tables. Relationships do not
// reference persons with a foreign key: the profile store is external and
// edges may name people that have no local profile row.
const Schema = `
CREATE TABLE IF NOT EXISTS persons (
	id           TEXT PRIMARY KEY,
	display_name TEXT,
	gender       TEXT NOT NULL DEFAULT 'unknown' CHECK (gender IN ('male', 'female', 'unknown')),
	is_alive     INTEGER NOT NULL DEFAULT 1,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS relationships (
	id         TEXT PRIMARY KEY,
	person_a   TEXT NOT NULL,
	person_b   TEXT NOT NULL,
	type       TEXT NOT NULL CHECK (type IN ('parent', 'spouse', 'sibling')),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (person_a, person_b, type)
);

CREATE INDEX IF NOT EXISTS idx_relationships_person_a ON relationships(person_a);
CREATE INDEX IF NOT EXISTS idx_relationships_person_b ON relationships(person_b);
`
