package engine

import (
	"slices"

	"github.com/elliotchance/pie/v2"

	"github.com/scrypster/kindred/pkg/types"
)

// SiblingPolicy decides which siblings Classify reports.
type SiblingPolicy int

const (
	// SiblingsExplicitAndDerived reports stored sibling edges plus every
	// other child of the root's parents. Stored edges set Explicit.
	SiblingsExplicitAndDerived SiblingPolicy = iota

	// SiblingsExplicitOnly reports stored sibling edges only.
	SiblingsExplicitOnly
)

// Classification is the generational placement of every ancestor and
// descendant of a root within a depth cap.
type Classification struct {
	RootID   string
	MaxDepth int

	// Ancestors and Descendants map depth (1 = parent/child) to sorted ids.
	// Each person appears at exactly one depth: the shortest chain.
	Ancestors   map[int][]string
	Descendants map[int][]string

	Siblings []types.SiblingRef
	Spouses  []string
}

// AncestorsAt returns the ancestors at exactly depth generations up.
func (c Classification) AncestorsAt(depth int) []string {
	return nonNil(c.Ancestors[depth])
}

// DescendantsAt returns the descendants at exactly depth generations down.
func (c Classification) DescendantsAt(depth int) []string {
	return nonNil(c.Descendants[depth])
}

// Classify places the root's relatives using the default sibling policy.
func Classify(g *KinshipGraph, rootID string, maxDepth int) Classification {
	return ClassifyWithPolicy(g, rootID, maxDepth, SiblingsExplicitAndDerived)
}

// ClassifyWithPolicy runs two independent level-by-level BFS traversals from
// rootID: one over parent links, one over child links. A person's depth is
// fixed the first time it is reached, and levels are processed in increasing
// order, so the shortest chain always wins.
func ClassifyWithPolicy(g *KinshipGraph, rootID string, maxDepth int, policy SiblingPolicy) Classification {
	return Classification{
		RootID:      rootID,
		MaxDepth:    maxDepth,
		Ancestors:   levels(rootID, maxDepth, g.parentsOf),
		Descendants: levels(rootID, maxDepth, g.childrenOf),
		Siblings:    siblings(g, rootID, policy),
		Spouses:     nonNil(g.SpousesOf(rootID)),
	}
}

// levels walks adj from root one generation at a time, up to maxDepth.
func levels(root string, maxDepth int, adj map[string][]string) map[int][]string {
	out := make(map[int][]string)
	depthOf := map[string]int{root: 0}
	frontier := []string{root}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var level []string
		for _, id := range frontier {
			for _, next := range adj[id] {
				if _, seen := depthOf[next]; seen {
					continue
				}
				depthOf[next] = depth
				level = append(level, next)
			}
		}
		if len(level) == 0 {
			break
		}
		slices.Sort(level)
		out[depth] = level
		frontier = level
	}
	return out
}

func siblings(g *KinshipGraph, rootID string, policy SiblingPolicy) []types.SiblingRef {
	found := make(map[string]bool) // id -> explicit
	for _, s := range g.siblingsOf[rootID] {
		found[s] = true
	}
	if policy == SiblingsExplicitAndDerived {
		for _, p := range g.parentsOf[rootID] {
			for _, c := range g.childrenOf[p] {
				if c == rootID {
					continue
				}
				if _, ok := found[c]; !ok {
					found[c] = false
				}
			}
		}
	}

	ids := pie.Sort(pie.Keys(found))
	refs := make([]types.SiblingRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, types.SiblingRef{PersonID: id, Explicit: found[id]})
	}
	return refs
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
