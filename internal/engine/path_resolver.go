package engine

import (
	"github.com/scrypster/kindred/pkg/types"
)

// hop records how BFS first reached a person.
type hop struct {
	from      string
	edgeType  types.EdgeType
	direction types.Direction
}

// FindPath returns the shortest path from startID to endID using every edge
// type as undirected, with at most maxDepth edges.
//
// Neighbors are expanded in a fixed order (parents, children, spouses,
// siblings, each sorted by id) so that ties between equally short paths are
// broken the same way on every call. A stored sibling edge is therefore
// always preferred over the two-edge route through a shared parent.
//
// startID == endID is found with length 0. Running out of depth or graph is
// a not-found result, never a truncated path.
func FindPath(g *KinshipGraph, startID, endID string, maxDepth int) types.ResolvedPath {
	if startID == endID {
		return types.ResolvedPath{
			Found:      true,
			Steps:      []types.PathStep{{PersonID: startID}},
			PathLength: 0,
		}
	}
	if maxDepth < 1 {
		return types.NotFoundPath()
	}

	prev := make(map[string]hop)
	visited := map[string]bool{startID: true}
	frontier := []string{startID}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, n := range g.neighbors(id) {
				if visited[n.id] {
					continue
				}
				visited[n.id] = true
				prev[n.id] = hop{from: id, edgeType: n.edgeType, direction: n.direction}
				if n.id == endID {
					return reconstruct(prev, startID, endID)
				}
				next = append(next, n.id)
			}
		}
		frontier = next
	}

	return types.NotFoundPath()
}

// reconstruct walks prev back from endID and builds the forward path.
func reconstruct(prev map[string]hop, startID, endID string) types.ResolvedPath {
	var reversed []types.PathStep
	reversed = append(reversed, types.PathStep{PersonID: endID})

	for cur := endID; cur != startID; {
		h := prev[cur]
		edgeType := h.edgeType
		direction := h.direction
		reversed = append(reversed, types.PathStep{
			PersonID:           h.from,
			RelationshipToNext: &edgeType,
			Direction:          &direction,
		})
		cur = h.from
	}

	n := len(reversed)
	steps := make([]types.PathStep, n)
	for i := range reversed {
		steps[i] = reversed[n-1-i]
	}
	return types.ResolvedPath{Found: true, Steps: steps, PathLength: n - 1}
}
