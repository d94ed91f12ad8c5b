package types

// Category is the coarse bucket describing a resolved path's shape.
type Category string

// Category constants
const (
	CategoryDirect   Category = "direct"
	CategoryExtended Category = "extended"
	CategoryCousin   Category = "cousin"
	CategoryInLaw    Category = "in-law"
	CategoryOther    Category = "other"
)

// KinshipLabel is the human-readable rendering of a resolved path.
type KinshipLabel struct {
	Term       string   `json:"term"`
	Category   Category `json:"category"`
	DegreeText string   `json:"degree_text"`
}

// SiblingRef is a sibling of the classification root.
type SiblingRef struct {
	PersonID string `json:"person_id"`
	Explicit bool   `json:"explicit"` // Backed by a stored sibling edge
}

// KinPerson is a Person placed in a classification bucket.
type KinPerson struct {
	Person
	Depth int `json:"depth"`
}

// KinSummary is the exposed depth classification of one person.
type KinSummary struct {
	RootID             string      `json:"root_id"`
	MaxDepth           int         `json:"max_depth"`
	Parents            []KinPerson `json:"parents"`
	Grandparents       []KinPerson `json:"grandparents"`
	GreatGrandparents  []KinPerson `json:"great_grandparents"`
	Children           []KinPerson `json:"children"`
	Grandchildren      []KinPerson `json:"grandchildren"`
	GreatGrandchildren []KinPerson `json:"great_grandchildren"`
	Siblings           []KinPerson `json:"siblings"`
	Spouses            []KinPerson `json:"spouses"`

	// AncestorsByDepth and DescendantsByDepth carry every resolved depth,
	// including those beyond the named buckets.
	AncestorsByDepth   map[int][]string `json:"ancestors_by_depth"`
	DescendantsByDepth map[int][]string `json:"descendants_by_depth"`
}

// Resolution is the exposed result of resolving the relationship between
// two people.
type Resolution struct {
	Found       bool       `json:"found"`
	PathLength  *int       `json:"path_length"`
	Path        []PathStep `json:"path"`
	Term        string     `json:"term"`
	DisplayTerm string     `json:"display_term"`
	Category    Category   `json:"category"`
	DegreeText  string     `json:"degree_text"`
	People      []Person   `json:"people,omitempty"`
}
