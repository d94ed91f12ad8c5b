// Package engine implements kinship resolution over a graph of typed family
// relationships: graph construction, generational depth classification,
// shortest-path resolution and kinship labeling.
//
// Every function in this package except KinshipEngine's methods is pure.
// A KinshipGraph is built per request from a fetched edge snapshot and is
// never mutated afterwards.
package engine

import (
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/elliotchance/pie/v2"

	"github.com/scrypster/kindred/pkg/types"
)

// Reasons an edge is dropped by BuildGraph.
const (
	dropDuplicate   = "duplicate"
	dropSelfLoop    = "self_loop"
	dropInvalidID   = "invalid_id"
	dropUnknownType = "unknown_type"
)

// BuildStats summarizes what BuildGraph did with its input.
type BuildStats struct {
	Accepted     int
	Duplicates   int
	SelfLoops    int
	InvalidIDs   int
	UnknownTypes int
}

// Dropped returns the number of edges that were not accepted.
func (s BuildStats) Dropped() int {
	return s.Duplicates + s.SelfLoops + s.InvalidIDs + s.UnknownTypes
}

// KinshipGraph is an immutable adjacency view over accepted edges.
type KinshipGraph struct {
	parentsOf  map[string][]string
	childrenOf map[string][]string
	spousesOf  map[string][]string
	siblingsOf map[string][]string

	// explicitSiblings holds unordered sibling pairs backed by a stored edge.
	explicitSiblings map[types.EdgeKey]bool

	stats BuildStats
}

// BuildGraph sanitizes edges and builds the four adjacency views.
//
// Self-loops, edges with empty or whitespace ids and edges of unknown type
// are dropped and logged at debug level. Duplicates are collapsed: ordered
// pairs for parent edges, unordered pairs for spouse and sibling edges.
// BuildGraph never fails; a corrupt record only removes itself.
func BuildGraph(edges []types.RelationshipEdge, logger *slog.Logger) *KinshipGraph {
	if logger == nil {
		logger = slog.Default()
	}

	g := &KinshipGraph{
		parentsOf:        make(map[string][]string),
		childrenOf:       make(map[string][]string),
		spousesOf:        make(map[string][]string),
		siblingsOf:       make(map[string][]string),
		explicitSiblings: make(map[types.EdgeKey]bool),
	}

	seen := make(map[types.EdgeKey]bool, len(edges))
	drop := func(e types.RelationshipEdge, reason string) {
		droppedEdges.WithLabelValues(reason).Inc()
		logger.Debug("kinship graph: dropping edge",
			"reason", reason,
			"edge_id", e.ID,
			"person_a", e.PersonA,
			"person_b", e.PersonB,
			"type", string(e.Type))
	}

	for _, e := range edges {
		switch {
		case !validGraphID(e.PersonA) || !validGraphID(e.PersonB):
			g.stats.InvalidIDs++
			drop(e, dropInvalidID)
			continue
		case e.IsSelfLoop():
			g.stats.SelfLoops++
			drop(e, dropSelfLoop)
			continue
		case !types.IsValidEdgeType(e.Type):
			g.stats.UnknownTypes++
			drop(e, dropUnknownType)
			continue
		}

		key := e.Key()
		if seen[key] {
			g.stats.Duplicates++
			drop(e, dropDuplicate)
			continue
		}
		seen[key] = true
		g.stats.Accepted++

		switch e.Type {
		case types.EdgeParent:
			g.parentsOf[e.PersonB] = append(g.parentsOf[e.PersonB], e.PersonA)
			g.childrenOf[e.PersonA] = append(g.childrenOf[e.PersonA], e.PersonB)
		case types.EdgeSpouse:
			g.spousesOf[e.PersonA] = append(g.spousesOf[e.PersonA], e.PersonB)
			g.spousesOf[e.PersonB] = append(g.spousesOf[e.PersonB], e.PersonA)
		case types.EdgeSibling:
			g.siblingsOf[e.PersonA] = append(g.siblingsOf[e.PersonA], e.PersonB)
			g.siblingsOf[e.PersonB] = append(g.siblingsOf[e.PersonB], e.PersonA)
			g.explicitSiblings[key] = true
		}
	}

	for _, adj := range []map[string][]string{g.parentsOf, g.childrenOf, g.spousesOf, g.siblingsOf} {
		for id, list := range adj {
			slices.Sort(list)
			adj[id] = list
		}
	}

	return g
}

// validGraphID rejects empty ids and ids that are blank or carry surrounding
// whitespace.
func validGraphID(id string) bool {
	if id == "" || strings.TrimSpace(id) != id {
		return false
	}
	return strings.IndexFunc(id, unicode.IsSpace) < 0
}

// ParentsOf returns the sorted parents of id.
func (g *KinshipGraph) ParentsOf(id string) []string { return slices.Clone(g.parentsOf[id]) }

// ChildrenOf returns the sorted children of id.
func (g *KinshipGraph) ChildrenOf(id string) []string { return slices.Clone(g.childrenOf[id]) }

// SpousesOf returns the sorted spouses of id.
func (g *KinshipGraph) SpousesOf(id string) []string { return slices.Clone(g.spousesOf[id]) }

// SiblingsOf returns the sorted explicit siblings of id.
func (g *KinshipGraph) SiblingsOf(id string) []string { return slices.Clone(g.siblingsOf[id]) }

// HasExplicitSibling reports whether a stored sibling edge connects a and b.
func (g *KinshipGraph) HasExplicitSibling(a, b string) bool {
	e := types.RelationshipEdge{PersonA: a, PersonB: b, Type: types.EdgeSibling}
	return g.explicitSiblings[e.Key()]
}

// Contains reports whether id appears on any accepted edge.
func (g *KinshipGraph) Contains(id string) bool {
	return len(g.parentsOf[id]) > 0 || len(g.childrenOf[id]) > 0 ||
		len(g.spousesOf[id]) > 0 || len(g.siblingsOf[id]) > 0
}

// People returns every person on an accepted edge, sorted.
func (g *KinshipGraph) People() []string {
	set := make(map[string]struct{})
	for _, adj := range []map[string][]string{g.parentsOf, g.childrenOf, g.spousesOf, g.siblingsOf} {
		for id := range adj {
			set[id] = struct{}{}
		}
	}
	return pie.Sort(pie.Keys(set))
}

// Stats returns the build statistics.
func (g *KinshipGraph) Stats() BuildStats {
	return g.stats
}

// neighbor is one traversable edge out of a node.
type neighbor struct {
	id        string
	edgeType  types.EdgeType
	direction types.Direction
}

// neighbors returns the edges out of id in traversal order: parents,
// children, spouses, siblings, each sorted by id.
func (g *KinshipGraph) neighbors(id string) []neighbor {
	out := make([]neighbor, 0,
		len(g.parentsOf[id])+len(g.childrenOf[id])+len(g.spousesOf[id])+len(g.siblingsOf[id]))
	for _, p := range g.parentsOf[id] {
		out = append(out, neighbor{p, types.EdgeParent, types.DirectionUp})
	}
	for _, c := range g.childrenOf[id] {
		out = append(out, neighbor{c, types.EdgeParent, types.DirectionDown})
	}
	for _, s := range g.spousesOf[id] {
		out = append(out, neighbor{s, types.EdgeSpouse, types.DirectionLateral})
	}
	for _, s := range g.siblingsOf[id] {
		out = append(out, neighbor{s, types.EdgeSibling, types.DirectionLateral})
	}
	return out
}
