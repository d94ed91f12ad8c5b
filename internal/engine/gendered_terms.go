package engine

import (
	"strings"

	"github.com/scrypster/kindred/pkg/types"
)

// genderedBase maps a canonical base term to its male and female forms.
var genderedBase = map[string][2]string{
	"parent":       {"father", "mother"},
	"child":        {"son", "daughter"},
	"spouse":       {"husband", "wife"},
	"sibling":      {"brother", "sister"},
	"grandparent":  {"grandfather", "grandmother"},
	"grandchild":   {"grandson", "granddaughter"},
	"aunt/uncle":   {"uncle", "aunt"},
	"niece/nephew": {"nephew", "niece"},
}

// GenderedTerm rewrites a canonical term for display using the gender of
// the person the term describes. Terms without gendered forms, and unknown
// gender, return term unchanged.
//
//	GenderedTerm("great-grandparent", GenderFemale)      // "great-grandmother"
//	GenderedTerm("step-parent", GenderMale)              // "stepfather"
//	GenderedTerm("aunt/uncle by marriage", GenderFemale) // "aunt by marriage"
func GenderedTerm(term string, gender types.Gender) string {
	var idx int
	switch types.NormalizeGender(gender) {
	case types.GenderMale:
		idx = 0
	case types.GenderFemale:
		idx = 1
	default:
		return term
	}

	base := term
	var prefix, suffix string
	for _, s := range []string{"-in-law", " by marriage"} {
		if strings.HasSuffix(base, s) {
			base, suffix = strings.TrimSuffix(base, s), s
			break
		}
	}
	if strings.HasPrefix(base, "step-") {
		base, prefix = strings.TrimPrefix(base, "step-"), "step"
	}
	greats := 0
	for strings.HasPrefix(base, "great-") {
		base = strings.TrimPrefix(base, "great-")
		greats++
	}

	forms, ok := genderedBase[base]
	if !ok {
		return term
	}
	if prefix != "" && greats > 0 {
		prefix = "step-"
	}
	return prefix + strings.Repeat("great-", greats) + forms[idx] + suffix
}
