package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/scrypster/kindred/internal/engine"
	"github.com/scrypster/kindred/pkg/types"
)

// KinshipService is the read surface served over HTTP. It is satisfied by
// *engine.KinshipEngine and by *cache.KinshipCache.
type KinshipService interface {
	ClassifyKin(ctx context.Context, req engine.ClassifyRequest) (*types.KinSummary, error)
	ResolveKinship(ctx context.Context, req engine.ResolveRequest) (*types.Resolution, error)
}

// KinshipHandlers serves classification and resolution requests.
type KinshipHandlers struct {
	kinship KinshipService
	logger  *slog.Logger
}

// NewKinshipHandlers creates handlers backed by svc.
func NewKinshipHandlers(svc KinshipService, logger *slog.Logger) *KinshipHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &KinshipHandlers{kinship: svc, logger: logger}
}

// GetKin handles GET /api/people/{id}/kin?max_depth=N.
func (h *KinshipHandlers) GetKin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	depth, ok := parseDepth(r)
	if !ok {
		respondError(w, http.StatusBadRequest, CodeInvalidDepth, "max_depth must be an integer")
		return
	}

	summary, err := h.kinship.ClassifyKin(r.Context(), engine.ClassifyRequest{
		RootID:   r.PathValue("id"),
		MaxDepth: depth,
	})
	if err != nil {
		respondEngineError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GetKinship handles GET /api/kinship?from=A&to=B&max_depth=N. The returned
// term describes "from" relative to "to". A missing path is a 200 with
// found=false.
func (h *KinshipHandlers) GetKinship(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	depth, ok := parseDepth(r)
	if !ok {
		respondError(w, http.StatusBadRequest, CodeInvalidDepth, "max_depth must be an integer")
		return
	}

	q := r.URL.Query()
	res, err := h.kinship.ResolveKinship(r.Context(), engine.ResolveRequest{
		PersonAID: q.Get("from"),
		PersonBID: q.Get("to"),
		MaxDepth:  depth,
	})
	if err != nil {
		respondEngineError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
