package engine

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/pkg/types"
)

var (
	// ErrInvalidDepth indicates a max depth that is not positive or exceeds
	// the hard ceiling.
	ErrInvalidDepth = fmt.Errorf("%w: invalid max depth", storage.ErrInvalidInput)

	// ErrInvalidPersonID indicates a malformed person identifier.
	ErrInvalidPersonID = fmt.Errorf("%w: %w", storage.ErrInvalidInput, types.ErrInvalidPersonID)
)

// Error codes attached to validation errors.
const (
	CodeInvalidDepth = "INVALID_DEPTH"
	CodeInvalidInput = "INVALID_INPUT"
)

func invalidDepthError(requested, ceiling int) error {
	return oops.
		In("engine").
		Code(CodeInvalidDepth).
		With("max_depth", requested).
		With("ceiling", ceiling).
		Wrapf(ErrInvalidDepth, "max_depth must be between 1 and %d, got %d", ceiling, requested)
}

func validatePersonID(field, id string) error {
	if err := types.ValidatePersonID(id); err != nil {
		return oops.
			In("engine").
			Code(CodeInvalidInput).
			With("field", field).
			Wrapf(ErrInvalidPersonID, "%s: %v", field, err)
	}
	return nil
}
