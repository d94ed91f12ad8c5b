package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/scrypster/kindred/internal/importer"
	"github.com/scrypster/kindred/pkg/types"
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printResolution(w io.Writer, a, b string, res *types.Resolution) {
	if !res.Found {
		fmt.Fprintf(w, "%s and %s are %s\n", a, b, res.Term)
		return
	}
	if res.PathLength != nil && *res.PathLength == 0 {
		fmt.Fprintf(w, "%s and %s are the %s\n", a, b, res.Term)
		return
	}

	fmt.Fprintf(w, "%s is %s's %s\n", a, b, res.DisplayTerm)
	fmt.Fprintf(w, "Category:    %s\n", res.Category)
	fmt.Fprintf(w, "Degree:      %s\n", res.DegreeText)
	if res.PathLength != nil {
		fmt.Fprintf(w, "Path length: %d\n", *res.PathLength)
	}

	hops := make([]string, 0, len(res.Path))
	for _, step := range res.Path {
		hop := step.PersonID
		if step.RelationshipToNext != nil && step.Direction != nil {
			hop += fmt.Sprintf(" -[%s %s]->", *step.RelationshipToNext, *step.Direction)
		}
		hops = append(hops, hop)
	}
	fmt.Fprintf(w, "Path:        %s\n", strings.Join(hops, " "))
}

func printKinSummary(w io.Writer, s *types.KinSummary) {
	fmt.Fprintf(w, "Kin of %s (depth %d)\n", s.RootID, s.MaxDepth)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, group := range []struct {
		name   string
		people []types.KinPerson
	}{
		{"Parents", s.Parents},
		{"Grandparents", s.Grandparents},
		{"Great-grandparents", s.GreatGrandparents},
		{"Children", s.Children},
		{"Grandchildren", s.Grandchildren},
		{"Great-grandchildren", s.GreatGrandchildren},
		{"Siblings", s.Siblings},
		{"Spouses", s.Spouses},
	} {
		if len(group.people) == 0 {
			continue
		}
		names := make([]string, 0, len(group.people))
		for _, p := range group.people {
			names = append(names, displayName(p.Person))
		}
		fmt.Fprintf(tw, "%s:\t%s\n", group.name, strings.Join(names, ", "))
	}
	_ = tw.Flush()
}

func printImportResult(w io.Writer, r *importer.ImportResult) {
	fmt.Fprintf(w, "Imported %d people and %d relationships in %s\n",
		r.PeopleStored, r.RelationshipsStored, r.Duration.Round(time.Millisecond))
	if r.Skipped > 0 {
		fmt.Fprintf(w, "Skipped %d entries:\n", r.Skipped)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}

func displayName(p types.Person) string {
	if p.DisplayName == "" || p.DisplayName == p.ID {
		return p.ID
	}
	return fmt.Sprintf("%s (%s)", p.DisplayName, p.ID)
}
