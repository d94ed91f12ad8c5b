package engine

import (
	"context"
	"fmt"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

func parent(a, b string) types.RelationshipEdge {
	return types.RelationshipEdge{PersonA: a, PersonB: b, Type: types.EdgeParent}
}

func spouse(a, b string) types.RelationshipEdge {
	return types.RelationshipEdge{PersonA: a, PersonB: b, Type: types.EdgeSpouse}
}

func sibling(a, b string) types.RelationshipEdge {
	return types.RelationshipEdge{PersonA: a, PersonB: b, Type: types.EdgeSibling}
}

func graphOf(edges ...types.RelationshipEdge) *KinshipGraph {
	return BuildGraph(edges, nil)
}

func intPtr(n int) *int { return &n }

// mockRelationshipStore serves a fixed edge list and person map.
type mockRelationshipStore struct {
	edges   []types.RelationshipEdge
	persons map[string]*types.Person

	fetchErr error
	getErr   error

	fetchCalls  int
	fetchDepths []int
	getCalls    int
}

func newMockRelationshipStore(edges ...types.RelationshipEdge) *mockRelationshipStore {
	return &mockRelationshipStore{
		edges:   edges,
		persons: make(map[string]*types.Person),
	}
}

func (m *mockRelationshipStore) addPerson(id, name string, gender types.Gender) {
	m.persons[id] = &types.Person{ID: id, DisplayName: name, Gender: gender, IsAlive: true}
}

func (m *mockRelationshipStore) FetchEdgesTouching(ctx context.Context, personID string) ([]types.RelationshipEdge, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := []types.RelationshipEdge{}
	for _, e := range m.edges {
		if e.Touches(personID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRelationshipStore) FetchAllEdgesReachableFrom(ctx context.Context, personID string, maxDepth int) ([]types.RelationshipEdge, error) {
	m.fetchCalls++
	m.fetchDepths = append(m.fetchDepths, maxDepth)
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}

	frontier := storage.NewFrontier(personID)
	for hop := 1; hop <= maxDepth && !frontier.Done(); hop++ {
		ids := map[string]bool{}
		for _, id := range frontier.Current() {
			ids[id] = true
		}
		var touching []types.RelationshipEdge
		for _, e := range m.edges {
			if ids[e.PersonA] || ids[e.PersonB] {
				touching = append(touching, e)
			}
		}
		frontier.Advance(touching)
	}
	return frontier.Edges(), nil
}

func (m *mockRelationshipStore) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.persons[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRelationshipStore) Close() error { return nil }

// pathOf builds a found path from a compact shape: u (up), d (down),
// s (spouse), b (sibling). Person ids are p0, p1, ...
func pathOf(shape string) types.ResolvedPath {
	steps := make([]types.PathStep, 0, len(shape)+1)
	for i, c := range shape {
		var (
			t types.EdgeType
			d types.Direction
		)
		switch c {
		case 'u':
			t, d = types.EdgeParent, types.DirectionUp
		case 'd':
			t, d = types.EdgeParent, types.DirectionDown
		case 's':
			t, d = types.EdgeSpouse, types.DirectionLateral
		case 'b':
			t, d = types.EdgeSibling, types.DirectionLateral
		default:
			panic("unknown shape rune " + string(c))
		}
		steps = append(steps, types.PathStep{PersonID: fmt.Sprintf("p%d", i), RelationshipToNext: &t, Direction: &d})
	}
	steps = append(steps, types.PathStep{PersonID: fmt.Sprintf("p%d", len(shape))})
	return types.ResolvedPath{Found: true, Steps: steps, PathLength: len(shape)}
}

// shapeOf is the inverse of pathOf.
func shapeOf(p types.ResolvedPath) string {
	out := make([]byte, 0, p.PathLength)
	for i, t := range p.EdgeTypes() {
		d := p.Directions()[i]
		switch {
		case t == types.EdgeParent && d == types.DirectionUp:
			out = append(out, 'u')
		case t == types.EdgeParent && d == types.DirectionDown:
			out = append(out, 'd')
		case t == types.EdgeSpouse:
			out = append(out, 's')
		case t == types.EdgeSibling:
			out = append(out, 'b')
		}
	}
	return string(out)
}

// pathIDs lists the person ids along a path.
func pathIDs(p types.ResolvedPath) []string {
	ids := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		ids = append(ids, s.PersonID)
	}
	return ids
}
