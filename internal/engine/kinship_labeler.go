package engine

import (
	"fmt"
	"strings"

	"github.com/scrypster/kindred/pkg/types"
)

// Canonical terms that are not built from a blood shape.
const (
	TermSamePerson        = "same person"
	TermSpouse            = "spouse"
	TermSibling           = "sibling"
	TermStepSibling       = "step-sibling"
	TermSiblingInLaw      = "sibling-in-law"
	TermRelated           = "related"
	TermRelatedByMarriage = "related by marriage"
	TermNotRelated        = "not related"
)

// Degree texts with fixed wording.
const (
	DegreeSamePerson   = "same person"
	DegreeDirect       = "directly connected"
	DegreeNotConnected = "not connected"
)

// move is one edge of a path reduced to what the labeler cares about.
type move int

const (
	moveUp move = iota
	moveDown
	moveSpouse
	moveSibling
)

// bloodKind is the shape class of a spouse-free path.
type bloodKind int

const (
	kindUnknown bloodKind = iota
	kindAncestor
	kindDescendant
	kindSibling
	kindCollateral
)

// Label renders a path as a kinship term describing the end person
// relative to the start person, a category and a degree text.
//
// Label looks only at the shape of the path. A shape it does not recognize
// is reported as "related" with category other.
func Label(path types.ResolvedPath) types.KinshipLabel {
	if !path.Found {
		return types.KinshipLabel{Term: TermNotRelated, Category: types.CategoryOther, DegreeText: DegreeNotConnected}
	}

	label := types.KinshipLabel{DegreeText: degreeText(path.PathLength)}
	moves := toMoves(path)
	if len(moves) != path.PathLength {
		// Steps missing edge data; the shape cannot be trusted.
		label.Term, label.Category = TermRelated, types.CategoryOther
		return label
	}
	label.Term, label.Category = termFor(moves)
	return label
}

func toMoves(path types.ResolvedPath) []move {
	edgeTypes := path.EdgeTypes()
	dirs := path.Directions()
	if len(edgeTypes) != len(dirs) {
		return nil
	}

	moves := make([]move, 0, len(edgeTypes))
	for i, t := range edgeTypes {
		switch {
		case t == types.EdgeParent && dirs[i] == types.DirectionUp:
			moves = append(moves, moveUp)
		case t == types.EdgeParent && dirs[i] == types.DirectionDown:
			moves = append(moves, moveDown)
		case t == types.EdgeSpouse:
			moves = append(moves, moveSpouse)
		case t == types.EdgeSibling:
			moves = append(moves, moveSibling)
		default:
			return nil
		}
	}
	return moves
}

func termFor(moves []move) (string, types.Category) {
	switch len(moves) {
	case 0:
		return TermSamePerson, types.CategoryDirect
	case 1:
		switch moves[0] {
		case moveUp:
			return "parent", types.CategoryDirect
		case moveDown:
			return "child", types.CategoryDirect
		case moveSpouse:
			return TermSpouse, types.CategoryDirect
		case moveSibling:
			return TermSibling, types.CategoryDirect
		}
	}

	spouseAt := -1
	for i, m := range moves {
		if m != moveSpouse {
			continue
		}
		if spouseAt >= 0 {
			return TermRelatedByMarriage, types.CategoryInLaw
		}
		spouseAt = i
	}

	if spouseAt < 0 {
		term, category, _ := blood(moves)
		return term, category
	}
	return inLaw(moves, spouseAt), types.CategoryInLaw
}

// inLaw labels a path with exactly one spouse edge.
func inLaw(moves []move, spouseAt int) string {
	last := len(moves) - 1
	switch spouseAt {
	case 0:
		term, _, kind := blood(moves[1:])
		switch kind {
		case kindAncestor, kindSibling, kindCollateral:
			return term + "-in-law"
		case kindDescendant:
			return "step-" + term
		}
	case last:
		term, _, kind := blood(moves[:last])
		switch kind {
		case kindDescendant:
			return term + "-in-law"
		case kindAncestor:
			return "step-" + term
		case kindSibling:
			return TermSiblingInLaw
		case kindCollateral:
			return term + " by marriage"
		}
	default:
		if len(moves) == 3 && moves[0] == moveUp && moves[2] == moveDown {
			return TermStepSibling
		}
	}
	return TermRelatedByMarriage
}

// blood labels a spouse-free path. A sibling edge counts as one step up to
// the implied common parent and one step down. The path must climb first
// and then descend; anything else is unknown.
func blood(moves []move) (string, types.Category, bloodKind) {
	ups, downs := 0, 0
	for _, m := range moves {
		switch m {
		case moveUp:
			if downs > 0 {
				return TermRelated, types.CategoryOther, kindUnknown
			}
			ups++
		case moveDown:
			downs++
		case moveSibling:
			if downs > 0 {
				return TermRelated, types.CategoryOther, kindUnknown
			}
			ups++
			downs++
		default:
			return TermRelated, types.CategoryOther, kindUnknown
		}
	}

	switch {
	case ups > 0 && downs == 0:
		return generational("parent", ups), lineCategory(ups), kindAncestor
	case ups == 0 && downs > 0:
		return generational("child", downs), lineCategory(downs), kindDescendant
	case ups == 1 && downs == 1:
		return TermSibling, types.CategoryDirect, kindSibling
	case ups == 2 && downs == 1:
		return "aunt/uncle", types.CategoryExtended, kindCollateral
	case ups == 1 && downs == 2:
		return "niece/nephew", types.CategoryExtended, kindCollateral
	case ups == downs && ups >= 2:
		return ordinalWord(ups-1) + " cousin", types.CategoryCousin, kindCollateral
	}
	return TermRelated, types.CategoryOther, kindUnknown
}

// generational builds parent, grandparent, great-grandparent, ... for base
// "parent" and the same ladder for "child".
func generational(base string, generations int) string {
	switch generations {
	case 1:
		return base
	case 2:
		return "grand" + base
	default:
		return strings.Repeat("great-", generations-2) + "grand" + base
	}
}

func lineCategory(generations int) types.Category {
	if generations == 1 {
		return types.CategoryDirect
	}
	return types.CategoryExtended
}

// degreeText renders a path length as a degree of separation.
func degreeText(length int) string {
	switch length {
	case 0:
		return DegreeSamePerson
	case 1:
		return DegreeDirect
	default:
		return ordinalNumber(length) + " degree"
	}
}

// ordinalNumber renders n as 2nd, 3rd, 4th, 11th, 21st, ...
func ordinalNumber(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

var ordinalWords = []string{
	"", "first", "second", "third", "fourth", "fifth", "sixth", "seventh",
	"eighth", "ninth", "tenth", "eleventh", "twelfth",
}

// ordinalWord spells small ordinals and falls back to ordinalNumber.
func ordinalWord(n int) string {
	if n > 0 && n < len(ordinalWords) {
		return ordinalWords[n]
	}
	return ordinalNumber(n)
}
