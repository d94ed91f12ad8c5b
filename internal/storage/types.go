package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scrypster/kindred/pkg/types"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable indicates the backing store is not accepting
	// requests, for example because its circuit breaker is open.
	ErrStoreUnavailable = errors.New("relationship store unavailable")
)

// ValidateEdge checks an edge before it is written. Reads never validate;
// the graph builder sanitizes whatever the store returns.
func ValidateEdge(edge *types.RelationshipEdge) error {
	if edge == nil {
		return ErrInvalidInput
	}
	if err := types.ValidatePersonID(edge.PersonA); err != nil {
		return fmt.Errorf("%w: person_a: %v", ErrInvalidInput, err)
	}
	if err := types.ValidatePersonID(edge.PersonB); err != nil {
		return fmt.Errorf("%w: person_b: %v", ErrInvalidInput, err)
	}
	if edge.IsSelfLoop() {
		return fmt.Errorf("%w: self-referencing %s edge", ErrInvalidInput, edge.Type)
	}
	if !types.IsValidEdgeType(edge.Type) {
		return fmt.Errorf("%w: unknown edge type %q", ErrInvalidInput, edge.Type)
	}
	return nil
}

// ValidatePerson checks a person before it is written.
func ValidatePerson(person *types.Person) error {
	if person == nil {
		return ErrInvalidInput
	}
	if err := types.ValidatePersonID(person.ID); err != nil {
		return fmt.Errorf("%w: id: %v", ErrInvalidInput, err)
	}
	if !types.IsValidGender(person.Gender) {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, person.Gender)
	}
	return nil
}

// Frontier tracks the breadth-first expansion used by store adapters to
// implement FetchAllEdgesReachableFrom with one query per hop.
type Frontier struct {
	visited map[string]bool
	seen    map[types.EdgeKey]bool
	current []string
	edges   []types.RelationshipEdge
}

// NewFrontier starts an expansion at personID.
func NewFrontier(personID string) *Frontier {
	return &Frontier{
		visited: map[string]bool{personID: true},
		seen:    make(map[types.EdgeKey]bool),
		current: []string{personID},
	}
}

// Current returns the ids whose touching edges should be fetched next.
func (f *Frontier) Current() []string {
	return f.current
}

// Done reports whether there is nothing left to expand.
func (f *Frontier) Done() bool {
	return len(f.current) == 0
}

// Advance records the edges fetched for the current frontier and moves the
// frontier to the newly discovered endpoints.
func (f *Frontier) Advance(edges []types.RelationshipEdge) {
	var next []string
	for _, e := range edges {
		key := e.Key()
		if !f.seen[key] {
			f.seen[key] = true
			f.edges = append(f.edges, e)
		}
		for _, id := range [2]string{e.PersonA, e.PersonB} {
			if id == "" || f.visited[id] {
				continue
			}
			f.visited[id] = true
			next = append(next, id)
		}
	}
	f.current = next
}

// Edges returns every distinct edge collected so far.
func (f *Frontier) Edges() []types.RelationshipEdge {
	if f.edges == nil {
		return []types.RelationshipEdge{}
	}
	return f.edges
}

// Placeholders returns "?, ?, ?" style placeholder lists for SQL IN clauses.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
