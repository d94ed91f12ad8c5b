// Package types defines the core data structures for the Kindred kinship
// engine. These types describe people, the typed relationship edges that
// connect them, and the resolved paths and labels produced by the engine.
package types

// Gender is the gender recorded on a person's profile. It only affects
// display vocabulary, never traversal.
type Gender string

// Gender constants
const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ValidGenders contains all valid gender values
var ValidGenders = []Gender{
	GenderMale,
	GenderFemale,
	GenderUnknown,
}

// IsValidGender checks if the given gender is recognized.
// Empty string is considered valid (normalized to unknown).
func IsValidGender(g Gender) bool {
	if g == "" {
		return true
	}
	for _, valid := range ValidGenders {
		if g == valid {
			return true
		}
	}
	return false
}

// NormalizeGender maps empty or unrecognized values to GenderUnknown.
func NormalizeGender(g Gender) Gender {
	switch g {
	case GenderMale, GenderFemale:
		return g
	default:
		return GenderUnknown
	}
}

// EdgeType is the type of a stored relationship edge.
type EdgeType string

// Edge type constants
const (
	// EdgeParent is directed: PersonA is the parent of PersonB.
	EdgeParent EdgeType = "parent"

	// EdgeSpouse is symmetric.
	EdgeSpouse EdgeType = "spouse"

	// EdgeSibling is symmetric.
	EdgeSibling EdgeType = "sibling"
)

// ValidEdgeTypes is a slice of all valid edge types for validation
var ValidEdgeTypes = []EdgeType{
	EdgeParent,
	EdgeSpouse,
	EdgeSibling,
}

// IsValidEdgeType checks if the given edge type is one of the known types.
func IsValidEdgeType(t EdgeType) bool {
	for _, valid := range ValidEdgeTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// IsSymmetric reports whether the edge implies the relation in both directions.
func (t EdgeType) IsSymmetric() bool {
	return t == EdgeSpouse || t == EdgeSibling
}

// Direction is the directional sense in which a path step traverses an edge.
type Direction string

// Direction constants
const (
	// DirectionUp traverses a parent edge from child to parent.
	DirectionUp Direction = "up"

	// DirectionDown traverses a parent edge from parent to child.
	DirectionDown Direction = "down"

	// DirectionLateral traverses a spouse or sibling edge.
	DirectionLateral Direction = "lateral"
)

// Mirror returns the direction seen when walking the same edge backwards.
func (d Direction) Mirror() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	default:
		return d
	}
}
