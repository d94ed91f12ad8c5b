package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/kindred/pkg/types"
)

func TestGenderedTerm(t *testing.T) {
	tests := []struct {
		term   string
		gender types.Gender
		want   string
	}{
		{"parent", types.GenderMale, "father"},
		{"parent", types.GenderFemale, "mother"},
		{"grandparent", types.GenderFemale, "grandmother"},
		{"great-great-grandparent", types.GenderMale, "great-great-grandfather"},
		{"grandchild", types.GenderFemale, "granddaughter"},
		{"aunt/uncle", types.GenderMale, "uncle"},
		{"aunt/uncle", types.GenderFemale, "aunt"},
		{"niece/nephew", types.GenderFemale, "niece"},
		{"sibling-in-law", types.GenderFemale, "sister-in-law"},
		{"parent-in-law", types.GenderMale, "father-in-law"},
		{"step-parent", types.GenderFemale, "stepmother"},
		{"step-sibling", types.GenderMale, "stepbrother"},
		{"step-great-grandparent", types.GenderMale, "step-great-grandfather"},
		{"aunt/uncle by marriage", types.GenderFemale, "aunt by marriage"},
		{"spouse", types.GenderFemale, "wife"},
		{"first cousin", types.GenderFemale, "first cousin"},
		{"related", types.GenderMale, "related"},
		{"grandparent", types.GenderUnknown, "grandparent"},
		{"grandparent", "", "grandparent"},
		{"grandparent", "other", "grandparent"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenderedTerm(tt.term, tt.gender), "%s/%s", tt.term, tt.gender)
	}
}
