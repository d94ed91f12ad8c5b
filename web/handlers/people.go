package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/scrypster/kindred/internal/idgen"
	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

// maxBodyBytes caps request bodies on write endpoints.
const maxBodyBytes = 1 << 20

// PeopleStore is the storage surface used by the write endpoints.
type PeopleStore interface {
	storage.RelationshipWriter
	GetPerson(ctx context.Context, id string) (*types.Person, error)
}

// Purger drops cached results after the graph changes.
type Purger interface {
	Purge()
}

// PeopleHandlers serves person and relationship writes.
type PeopleHandlers struct {
	store    PeopleStore
	purger   Purger
	validate *validator.Validate
	logger   *slog.Logger
	newID    func() (string, error)
}

// NewPeopleHandlers creates write handlers. purger may be nil when no
// result cache is configured.
func NewPeopleHandlers(store PeopleStore, purger Purger, logger *slog.Logger) *PeopleHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PeopleHandlers{
		store:    store,
		purger:   purger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		newID:    idgen.NewPersonID,
	}
}

// GetPerson handles GET /api/people/{id}.
func (h *PeopleHandlers) GetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.store.GetPerson(r.Context(), r.PathValue("id"))
	if err != nil {
		respondEngineError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

// CreatePerson handles POST /api/people (upsert).
func (h *PeopleHandlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := req.ID
	if id == "" {
		var err error
		if id, err = h.newID(); err != nil {
			respondEngineError(w, r, h.logger, err)
			return
		}
	}
	alive := true
	if req.IsAlive != nil {
		alive = *req.IsAlive
	}

	person := &types.Person{
		ID:          id,
		DisplayName: req.DisplayName,
		Gender:      types.NormalizeGender(types.Gender(req.Gender)),
		IsAlive:     alive,
	}
	if err := h.store.StorePerson(r.Context(), person); err != nil {
		respondEngineError(w, r, h.logger, err)
		return
	}
	h.purge()

	h.logger.Info("person stored", "person_id", person.ID, "request_id", RequestIDFrom(r.Context()))
	respondJSON(w, http.StatusCreated, person)
}

// CreateRelationship handles POST /api/relationships.
func (h *PeopleHandlers) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if !h.decode(w, r, &req) {
		return
	}

	edge := &types.RelationshipEdge{
		PersonA: req.PersonA,
		PersonB: req.PersonB,
		Type:    types.EdgeType(req.Type),
	}
	if err := h.store.StoreRelationship(r.Context(), edge); err != nil {
		respondEngineError(w, r, h.logger, err)
		return
	}
	h.purge()

	h.logger.Info("relationship stored",
		"relationship_id", edge.ID,
		"type", edge.Type,
		"person_a", edge.PersonA,
		"person_b", edge.PersonB,
		"request_id", RequestIDFrom(r.Context()))
	respondJSON(w, http.StatusCreated, edge)
}

// DeleteRelationship handles DELETE /api/relationships/{id}.
func (h *PeopleHandlers) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteRelationship(r.Context(), id); err != nil {
		respondEngineError(w, r, h.logger, err)
		return
	}
	h.purge()
	w.WriteHeader(http.StatusNoContent)
}

func (h *PeopleHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return false
	}
	return true
}

func (h *PeopleHandlers) purge() {
	if h.purger != nil {
		h.purger.Purge()
	}
}
