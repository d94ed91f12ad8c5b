package types_test

import (
	"strings"
	"testing"

	"github.com/scrypster/kindred/pkg/types"
)

func TestIsValidEdgeType(t *testing.T) {
	for _, et := range types.ValidEdgeTypes {
		if !types.IsValidEdgeType(et) {
			t.Errorf("IsValidEdgeType(%q) = false, want true", et)
		}
	}
	for _, et := range []types.EdgeType{"", "cousin", "PARENT", "friend_of"} {
		if types.IsValidEdgeType(et) {
			t.Errorf("IsValidEdgeType(%q) = true, want false", et)
		}
	}
}

func TestEdgeType_IsSymmetric(t *testing.T) {
	if types.EdgeParent.IsSymmetric() {
		t.Error("parent edges are directed")
	}
	if !types.EdgeSpouse.IsSymmetric() || !types.EdgeSibling.IsSymmetric() {
		t.Error("spouse and sibling edges are symmetric")
	}
}

func TestNormalizeGender(t *testing.T) {
	cases := map[types.Gender]types.Gender{
		"":       types.GenderUnknown,
		"male":   types.GenderMale,
		"female": types.GenderFemale,
		"other":  types.GenderUnknown,
	}
	for in, want := range cases {
		if got := types.NormalizeGender(in); got != want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidatePersonID(t *testing.T) {
	valid := []string{"p-1", "alice", "8f14e45f-ceea-467f-a0e6-1b7f1b1c2d3e", "ñandú"}
	for _, id := range valid {
		if err := types.ValidatePersonID(id); err != nil {
			t.Errorf("ValidatePersonID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", " ", "a b", "tab\tid", "nl\n", strings.Repeat("x", types.MaxPersonIDLength+1)}
	for _, id := range invalid {
		if err := types.ValidatePersonID(id); err == nil {
			t.Errorf("ValidatePersonID(%q) = nil, want error", id)
		}
	}
}

func TestRelationshipEdge_Key(t *testing.T) {
	spouseAB := types.RelationshipEdge{PersonA: "a", PersonB: "b", Type: types.EdgeSpouse}
	spouseBA := types.RelationshipEdge{PersonA: "b", PersonB: "a", Type: types.EdgeSpouse}
	if spouseAB.Key() != spouseBA.Key() {
		t.Error("symmetric edges must share a key regardless of column order")
	}

	parentAB := types.RelationshipEdge{PersonA: "a", PersonB: "b", Type: types.EdgeParent}
	parentBA := types.RelationshipEdge{PersonA: "b", PersonB: "a", Type: types.EdgeParent}
	if parentAB.Key() == parentBA.Key() {
		t.Error("parent edges are keyed by ordered pair")
	}

	if parentAB.Key() == spouseAB.Key() {
		t.Error("edges of different types must not share a key")
	}
}

func TestResolvedPath_Reverse(t *testing.T) {
	up := types.DirectionUp
	lateral := types.DirectionLateral
	parent := types.EdgeParent
	sibling := types.EdgeSibling

	// x -up-> p -sibling-> q  (q is x's aunt/uncle)
	path := types.ResolvedPath{
		Found:      true,
		PathLength: 2,
		Steps: []types.PathStep{
			{PersonID: "x", RelationshipToNext: &parent, Direction: &up},
			{PersonID: "p", RelationshipToNext: &sibling, Direction: &lateral},
			{PersonID: "q"},
		},
	}

	rev := path.Reverse()
	if !rev.Found || rev.PathLength != 2 {
		t.Fatalf("Reverse() = %+v, want found path of length 2", rev)
	}
	if rev.Start() != "q" || rev.End() != "x" {
		t.Errorf("Reverse() endpoints = %s..%s, want q..x", rev.Start(), rev.End())
	}

	dirs := rev.Directions()
	want := []types.Direction{types.DirectionLateral, types.DirectionDown}
	if len(dirs) != len(want) {
		t.Fatalf("Directions() = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("Directions()[%d] = %s, want %s", i, dirs[i], want[i])
		}
	}

	edges := rev.EdgeTypes()
	if edges[0] != types.EdgeSibling || edges[1] != types.EdgeParent {
		t.Errorf("EdgeTypes() = %v, want [sibling parent]", edges)
	}

	if rev.Steps[2].RelationshipToNext != nil || rev.Steps[2].Direction != nil {
		t.Error("last step must have no outgoing relationship")
	}

	// Reversing twice restores the original.
	back := rev.Reverse()
	for i := range path.Steps {
		if back.Steps[i].PersonID != path.Steps[i].PersonID {
			t.Errorf("double Reverse() step %d = %s, want %s", i, back.Steps[i].PersonID, path.Steps[i].PersonID)
		}
	}
}

func TestResolvedPath_ReverseNotFound(t *testing.T) {
	rev := types.NotFoundPath().Reverse()
	if rev.Found || len(rev.Steps) != 0 {
		t.Errorf("Reverse() of not-found path = %+v", rev)
	}
}
