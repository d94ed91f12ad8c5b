// Package importer loads family trees from YAML documents into a
// relationship store.
//
// A document lists people and the typed edges between them:
//
//	people:
//	  - key: alice
//	    name: Alice
//	    gender: female
//	  - key: bob
//	    id: p-bob
//	    gender: male
//	    alive: false
//	relationships:
//	  - {type: parent, from: alice, to: bob}
//	  - {type: spouse, from: alice, to: carl}
//
// Relationship endpoints name a person key from the same document, or an
// existing person ID already in the store. For parent edges "from" is the
// parent and "to" is the child.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"github.com/scrypster/kindred/internal/idgen"
	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
	"gopkg.in/yaml.v3"
)

// Document is the parsed form of a family-tree file.
type Document struct {
	People        []PersonEntry       `yaml:"people" validate:"dive"`
	Relationships []RelationshipEntry `yaml:"relationships" validate:"dive"`
}

// PersonEntry describes one person. Key is the local reference used by
// relationships; it defaults to ID. When ID is empty one is generated.
type PersonEntry struct {
	Key    string `yaml:"key"`
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Gender string `yaml:"gender" validate:"omitempty,oneof=male female unknown"`
	Alive  *bool  `yaml:"alive"`
}

// RelationshipEntry describes one edge between two people.
type RelationshipEntry struct {
	Type string `yaml:"type" validate:"required,oneof=parent spouse sibling"`
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}

// ImportResult is the summary produced by a completed import.
type ImportResult struct {
	PeopleStored        int               `json:"people_stored"`
	RelationshipsStored int               `json:"relationships_stored"`
	Skipped             int               `json:"skipped"`
	Errors              []string          `json:"errors,omitempty"`
	IDs                 map[string]string `json:"ids"` // person key -> stored ID
	Duration            time.Duration     `json:"duration_ms"`
}

// FamilyTreeImporter writes parsed documents to a store.
type FamilyTreeImporter struct {
	writer storage.RelationshipWriter
	logger *slog.Logger
	newID  func() (string, error)
}

// NewFamilyTreeImporter creates an importer writing through w.
func NewFamilyTreeImporter(w storage.RelationshipWriter, logger *slog.Logger) *FamilyTreeImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FamilyTreeImporter{
		writer: w,
		logger: logger,
		newID:  idgen.NewPersonID,
	}
}

// Parse decodes and validates a family-tree document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oops.In("importer").Wrapf(errors.Join(storage.ErrInvalidInput, err), "failed to parse family tree")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&doc); err != nil {
		return nil, oops.In("importer").Wrapf(errors.Join(storage.ErrInvalidInput, err), "failed to validate family tree")
	}

	seen := make(map[string]bool, len(doc.People))
	for i, p := range doc.People {
		key := p.ref()
		if key == "" {
			return nil, oops.In("importer").With("index", i).Wrapf(storage.ErrInvalidInput, "person %d has neither key nor id", i)
		}
		if seen[key] {
			return nil, oops.In("importer").With("key", key).Wrapf(storage.ErrInvalidInput, "duplicate person key %q", key)
		}
		seen[key] = true
	}
	return &doc, nil
}

// ImportFile reads, parses and imports the document at path.
func (imp *FamilyTreeImporter) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read family tree: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return imp.Import(ctx, doc)
}

// Import stores every person and then every relationship in doc.
// Entries rejected by the store as invalid are recorded in Errors and
// skipped; any other store error aborts the import.
func (imp *FamilyTreeImporter) Import(ctx context.Context, doc *Document) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{IDs: make(map[string]string, len(doc.People))}

	for _, entry := range doc.People {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		person, err := imp.personFrom(entry)
		if err != nil {
			return result, err
		}
		if err := imp.writer.StorePerson(ctx, person); err != nil {
			if !errors.Is(err, storage.ErrInvalidInput) {
				return result, fmt.Errorf("failed to store person %q: %w", entry.ref(), err)
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("person %q: %v", entry.ref(), err))
			continue
		}
		result.IDs[entry.ref()] = person.ID
		result.PeopleStored++
	}

	for _, entry := range doc.Relationships {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		edge := &types.RelationshipEdge{
			PersonA: result.resolve(entry.From),
			PersonB: result.resolve(entry.To),
			Type:    types.EdgeType(entry.Type),
		}
		if err := imp.writer.StoreRelationship(ctx, edge); err != nil {
			if !errors.Is(err, storage.ErrInvalidInput) {
				return result, fmt.Errorf("failed to store %s relationship %s -> %s: %w", entry.Type, entry.From, entry.To, err)
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s -> %s: %v", entry.Type, entry.From, entry.To, err))
			continue
		}
		result.RelationshipsStored++
	}

	result.Duration = time.Since(start)
	imp.logger.Info("family tree imported",
		"people", result.PeopleStored,
		"relationships", result.RelationshipsStored,
		"skipped", result.Skipped,
		"duration", result.Duration)
	return result, nil
}

func (imp *FamilyTreeImporter) personFrom(entry PersonEntry) (*types.Person, error) {
	id := entry.ID
	if id == "" {
		var err error
		if id, err = imp.newID(); err != nil {
			return nil, err
		}
	}
	alive := true
	if entry.Alive != nil {
		alive = *entry.Alive
	}
	return &types.Person{
		ID:          id,
		DisplayName: entry.Name,
		Gender:      types.NormalizeGender(types.Gender(entry.Gender)),
		IsAlive:     alive,
	}, nil
}

func (p PersonEntry) ref() string {
	if p.Key != "" {
		return p.Key
	}
	return p.ID
}

// resolve maps a document key to its stored ID. Unknown references are
// used as literal person IDs.
func (r *ImportResult) resolve(ref string) string {
	if id, ok := r.IDs[ref]; ok {
		return id
	}
	return ref
}
