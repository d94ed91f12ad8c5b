package types

// PathStep is one node in a resolved path. The last step has nil
// RelationshipToNext and Direction.
type PathStep struct {
	PersonID           string     `json:"person_id"`
	RelationshipToNext *EdgeType  `json:"relationship_type_to_next"`
	Direction          *Direction `json:"direction"`
}

// ResolvedPath is the shortest edge-labeled path between two people.
type ResolvedPath struct {
	// Found is false when no path exists within the depth cap.
	Found bool `json:"found"`

	// Steps is empty when Found is false.
	Steps []PathStep `json:"steps"`

	// PathLength is the number of edges. Zero when both ends are the same
	// person; meaningless when Found is false.
	PathLength int `json:"path_length"`
}

// NotFoundPath returns the canonical negative result.
func NotFoundPath() ResolvedPath {
	return ResolvedPath{Found: false, Steps: []PathStep{}}
}

// Start returns the id of the first person on the path, or "" if empty.
func (p ResolvedPath) Start() string {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[0].PersonID
}

// End returns the id of the last person on the path, or "" if empty.
func (p ResolvedPath) End() string {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[len(p.Steps)-1].PersonID
}

// Directions returns the direction of every edge along the path in order.
func (p ResolvedPath) Directions() []Direction {
	if len(p.Steps) < 2 {
		return nil
	}
	dirs := make([]Direction, 0, len(p.Steps)-1)
	for _, s := range p.Steps[:len(p.Steps)-1] {
		if s.Direction != nil {
			dirs = append(dirs, *s.Direction)
		}
	}
	return dirs
}

// EdgeTypes returns the edge type of every edge along the path in order.
func (p ResolvedPath) EdgeTypes() []EdgeType {
	if len(p.Steps) < 2 {
		return nil
	}
	out := make([]EdgeType, 0, len(p.Steps)-1)
	for _, s := range p.Steps[:len(p.Steps)-1] {
		if s.RelationshipToNext != nil {
			out = append(out, *s.RelationshipToNext)
		}
	}
	return out
}

// Reverse returns the same path walked from the other end: step order is
// reversed, up and down are swapped and lateral steps are unchanged.
func (p ResolvedPath) Reverse() ResolvedPath {
	if !p.Found {
		return NotFoundPath()
	}
	n := len(p.Steps)
	steps := make([]PathStep, n)
	for i := 0; i < n; i++ {
		steps[i] = PathStep{PersonID: p.Steps[n-1-i].PersonID}
	}
	// Edge i in the reversed path is edge n-2-i in the original.
	for i := 0; i < n-1; i++ {
		orig := p.Steps[n-2-i]
		if orig.RelationshipToNext != nil {
			t := *orig.RelationshipToNext
			steps[i].RelationshipToNext = &t
		}
		if orig.Direction != nil {
			d := orig.Direction.Mirror()
			steps[i].Direction = &d
		}
	}
	return ResolvedPath{Found: true, Steps: steps, PathLength: p.PathLength}
}
