package types

import "time"

// RelationshipEdge is the atomic stored fact connecting two people.
//
// For EdgeParent, PersonA is the parent of PersonB. EdgeSpouse and
// EdgeSibling are symmetric, so the column order of the two ids carries no
// meaning for them.
type RelationshipEdge struct {
	ID        string    `json:"id,omitempty"`         // Store row id, ignored by the algorithms
	PersonA   string    `json:"person_a"`             // Parent for EdgeParent
	PersonB   string    `json:"person_b"`             // Child for EdgeParent
	Type      EdgeType  `json:"type"`                 // parent, spouse or sibling
	CreatedAt time.Time `json:"created_at,omitempty"` // Creation timestamp
}

// IsSelfLoop reports whether both ends of the edge are the same person.
func (e RelationshipEdge) IsSelfLoop() bool {
	return e.PersonA == e.PersonB
}

// Key returns the deduplication key for the edge: the ordered pair for
// parent edges, the unordered pair for symmetric edges.
func (e RelationshipEdge) Key() EdgeKey {
	a, b := e.PersonA, e.PersonB
	if e.Type.IsSymmetric() && b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b, Type: e.Type}
}

// Touches reports whether personID is one of the edge's endpoints.
func (e RelationshipEdge) Touches(personID string) bool {
	return e.PersonA == personID || e.PersonB == personID
}

// EdgeKey identifies a relationship independent of storage row identity.
type EdgeKey struct {
	A    string
	B    string
	Type EdgeType
}
