package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// Config holds the tunable limits of a KinshipEngine.
type Config struct {
	Classify DepthLimits
	Resolve  DepthLimits

	// SiblingPolicy selects how siblings are reported by ClassifyKin.
	SiblingPolicy SiblingPolicy
}

// DefaultConfig returns the built-in limits and sibling policy.
func DefaultConfig() Config {
	return Config{
		Classify:      ClassifyLimits(),
		Resolve:       ResolveLimits(),
		SiblingPolicy: SiblingsExplicitAndDerived,
	}
}

// Normalize fills missing limits and clamps ceilings to the hard maxima.
func (c *Config) Normalize() {
	c.Classify.Normalize(ClassifyLimits())
	c.Resolve.Normalize(ResolveLimits())
}

// ClassifyRequest asks for the generational placement of RootID's kin.
type ClassifyRequest struct {
	RootID   string
	MaxDepth *int
}

// ResolveRequest asks for the relationship of PersonBID to PersonAID.
type ResolveRequest struct {
	PersonAID string
	PersonBID string
	MaxDepth  *int
}

// KinshipEngine answers classification and resolution requests against a
// relationship store. Each request fetches one edge snapshot up front,
// builds a private graph from it and runs the pure algorithms over it.
//
// A KinshipEngine holds no mutable state and is safe for concurrent use.
type KinshipEngine struct {
	store  storage.RelationshipStore
	cfg    Config
	logger *slog.Logger
}

// NewKinshipEngine creates an engine over store.
func NewKinshipEngine(store storage.RelationshipStore, cfg Config, logger *slog.Logger) *KinshipEngine {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Normalize()
	return &KinshipEngine{store: store, cfg: cfg, logger: logger}
}

// Config returns the normalized configuration.
func (e *KinshipEngine) Config() Config {
	return e.cfg
}

// ClassifyKin buckets the root's parents, grandparents, great-grandparents,
// children, grandchildren, great-grandchildren, siblings and spouses.
//
// A root with no edges yields empty buckets, not an error.
func (e *KinshipEngine) ClassifyKin(ctx context.Context, req ClassifyRequest) (summary *types.KinSummary, err error) {
	start := time.Now()
	defer func() {
		operationDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())
		result := resultOK
		if err != nil {
			result = resultLabel(err, false)
		}
		classifyTotal.WithLabelValues(result).Inc()
	}()

	if err := validatePersonID("root_id", req.RootID); err != nil {
		return nil, err
	}
	depth, err := e.cfg.Classify.Resolve(req.MaxDepth)
	if err != nil {
		return nil, err
	}

	// Deriving siblings needs the root's parents' other children, two hops out.
	edges, err := e.store.FetchAllEdgesReachableFrom(ctx, req.RootID, max(depth, 2))
	if err != nil {
		return nil, fmt.Errorf("classify %s: fetch edges: %w", req.RootID, err)
	}

	graph := BuildGraph(edges, e.logger)
	c := ClassifyWithPolicy(graph, req.RootID, depth, e.cfg.SiblingPolicy)

	people := newPersonLookup(e.store)
	summary = &types.KinSummary{
		RootID:             req.RootID,
		MaxDepth:           depth,
		AncestorsByDepth:   c.Ancestors,
		DescendantsByDepth: c.Descendants,
	}

	siblingIDs := make([]string, 0, len(c.Siblings))
	for _, s := range c.Siblings {
		siblingIDs = append(siblingIDs, s.PersonID)
	}

	type bucket struct {
		dst   *[]types.KinPerson
		ids   []string
		depth int
	}
	buckets := []bucket{
		{&summary.Parents, c.AncestorsAt(1), 1},
		{&summary.Grandparents, c.AncestorsAt(2), 2},
		{&summary.GreatGrandparents, c.AncestorsAt(3), 3},
		{&summary.Children, c.DescendantsAt(1), 1},
		{&summary.Grandchildren, c.DescendantsAt(2), 2},
		{&summary.GreatGrandchildren, c.DescendantsAt(3), 3},
		{&summary.Siblings, siblingIDs, 0},
		{&summary.Spouses, c.Spouses, 0},
	}

	for _, b := range buckets {
		kin, err := people.kin(ctx, b.ids, b.depth)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", req.RootID, err)
		}
		*b.dst = kin
	}

	e.logger.Debug("kinship: classified",
		"root_id", req.RootID,
		"max_depth", depth,
		"edges", len(edges),
		"ancestor_levels", len(c.Ancestors),
		"descendant_levels", len(c.Descendants),
		"siblings", len(c.Siblings),
		"spouses", len(c.Spouses))

	return summary, nil
}

// ResolveKinship finds the shortest path between two people and labels it.
// The path runs from PersonA to PersonB; the term describes PersonA
// relative to PersonB ("A is B's parent").
//
// The search always runs from the lexicographically smaller id and the
// result is mirrored when needed, so resolving (A, B) and (B, A) yields the
// same path walked in opposite directions.
func (e *KinshipEngine) ResolveKinship(ctx context.Context, req ResolveRequest) (res *types.Resolution, err error) {
	start := time.Now()
	defer func() {
		operationDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())
		resolveTotal.WithLabelValues(resultLabel(err, res != nil && res.Found)).Inc()
	}()

	if err := validatePersonID("person_a_id", req.PersonAID); err != nil {
		return nil, err
	}
	if err := validatePersonID("person_b_id", req.PersonBID); err != nil {
		return nil, err
	}
	depth, err := e.cfg.Resolve.Resolve(req.MaxDepth)
	if err != nil {
		return nil, err
	}

	path, edgeCount, err := e.findCanonicalPath(ctx, req.PersonAID, req.PersonBID, depth)
	if err != nil {
		return nil, err
	}

	res, err = e.render(ctx, path, req.PersonAID, req.PersonBID)
	if err != nil {
		return nil, fmt.Errorf("resolve %s -> %s: %w", req.PersonAID, req.PersonBID, err)
	}

	e.logger.Debug("kinship: resolved",
		"person_a_id", req.PersonAID,
		"person_b_id", req.PersonBID,
		"max_depth", depth,
		"edges", edgeCount,
		"found", res.Found,
		"term", res.Term)

	return res, nil
}

// findCanonicalPath searches from min(a, b) to max(a, b) and orients the
// result from a to b.
func (e *KinshipEngine) findCanonicalPath(ctx context.Context, a, b string, depth int) (types.ResolvedPath, int, error) {
	if a == b {
		return FindPath(nil, a, b, depth), 0, nil
	}

	from, to := a, b
	if to < from {
		from, to = to, from
	}

	edges, err := e.store.FetchAllEdgesReachableFrom(ctx, from, depth)
	if err != nil {
		return types.ResolvedPath{}, 0, fmt.Errorf("resolve %s -> %s: fetch edges: %w", a, b, err)
	}

	path := FindPath(BuildGraph(edges, e.logger), from, to, depth)
	if from != a {
		path = path.Reverse()
	}
	return path, len(edges), nil
}

// render labels path and enriches it with the people on it. For a
// not-found path the two endpoints are enriched.
func (e *KinshipEngine) render(ctx context.Context, path types.ResolvedPath, a, b string) (*types.Resolution, error) {
	// Label names the end of a path relative to its start; walking from b
	// back to a makes the term describe a.
	label := Label(path.Reverse())
	res := &types.Resolution{
		Found:      path.Found,
		Path:       path.Steps,
		Term:       label.Term,
		Category:   label.Category,
		DegreeText: label.DegreeText,
	}
	if res.Path == nil {
		res.Path = []types.PathStep{}
	}
	if path.Found {
		n := path.PathLength
		res.PathLength = &n
	}

	ids := []string{a, b}
	if path.Found {
		ids = make([]string, 0, len(path.Steps))
		for _, s := range path.Steps {
			ids = append(ids, s.PersonID)
		}
	}

	people := newPersonLookup(e.store)
	persons, err := people.all(ctx, ids)
	if err != nil {
		return nil, err
	}
	res.People = persons

	target, err := people.get(ctx, a)
	if err != nil {
		return nil, err
	}
	res.DisplayTerm = GenderedTerm(label.Term, target.Gender)
	return res, nil
}

// personLookup memoizes GetPerson within one request.
type personLookup struct {
	store storage.RelationshipStore
	seen  map[string]types.Person
}

func newPersonLookup(store storage.RelationshipStore) *personLookup {
	return &personLookup{store: store, seen: make(map[string]types.Person)}
}

// get returns the stored profile, or a placeholder when none exists.
func (l *personLookup) get(ctx context.Context, id string) (types.Person, error) {
	if p, ok := l.seen[id]; ok {
		return p, nil
	}
	stored, err := l.store.GetPerson(ctx, id)
	var p types.Person
	switch {
	case errors.Is(err, storage.ErrNotFound):
		p = types.UnknownPerson(id)
	case err != nil:
		return types.Person{}, fmt.Errorf("get person %s: %w", id, err)
	default:
		p = *stored
		p.Gender = types.NormalizeGender(p.Gender)
	}
	l.seen[id] = p
	return p, nil
}

// all resolves ids in order, skipping repeats.
func (l *personLookup) all(ctx context.Context, ids []string) ([]types.Person, error) {
	out := make([]types.Person, 0, len(ids))
	done := make(map[string]bool, len(ids))
	for _, id := range ids {
		if done[id] {
			continue
		}
		done[id] = true
		p, err := l.get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// kin resolves ids into KinPersons at depth.
func (l *personLookup) kin(ctx context.Context, ids []string, depth int) ([]types.KinPerson, error) {
	out := make([]types.KinPerson, 0, len(ids))
	for _, id := range ids {
		p, err := l.get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, types.KinPerson{Person: p, Depth: depth})
	}
	return out, nil
}

func resultLabel(err error, found bool) string {
	switch {
	case errors.Is(err, storage.ErrInvalidInput):
		return resultInvalid
	case err != nil:
		return resultError
	case found:
		return resultFound
	default:
		return resultNotFound
	}
}

// MirrorResolution returns res as seen from the other person: the path is
// walked backwards, the term is recomputed for the new first person and the
// people list is reversed. res is not modified.
func MirrorResolution(res *types.Resolution) *types.Resolution {
	path := types.ResolvedPath{Found: res.Found, Steps: res.Path}
	if res.PathLength != nil {
		path.PathLength = *res.PathLength
	}
	mirrored := path.Reverse()

	// The original path ends at the person the mirrored term describes.
	label := Label(path)
	out := &types.Resolution{
		Found:      res.Found,
		Path:       mirrored.Steps,
		Term:       label.Term,
		Category:   label.Category,
		DegreeText: label.DegreeText,
		People:     make([]types.Person, len(res.People)),
	}
	if res.PathLength != nil {
		n := *res.PathLength
		out.PathLength = &n
	}
	for i, p := range res.People {
		out.People[len(res.People)-1-i] = p
	}

	// People runs from the described person to the other end.
	out.DisplayTerm = label.Term
	if len(out.People) > 0 {
		out.DisplayTerm = GenderedTerm(label.Term, out.People[0].Gender)
	}
	return out
}
