package types

import (
	"errors"
	"unicode"
)

// MaxPersonIDLength is the maximum accepted length of a person identifier.
const MaxPersonIDLength = 128

// ErrInvalidPersonID indicates a person identifier failed format validation.
var ErrInvalidPersonID = errors.New("invalid person id")

// Person is the identity of a person as far as kinship is concerned.
// It is owned by the profile store; the engine treats it as read-only
// reference data used for display enrichment only.
type Person struct {
	ID          string `json:"id"`                     // Opaque stable identifier
	DisplayName string `json:"display_name,omitempty"` // Profile display name
	Gender      Gender `json:"gender"`                 // male, female or unknown
	IsAlive     bool   `json:"is_alive"`               // Defaults to true
}

// UnknownPerson returns the placeholder used when a profile cannot be found.
func UnknownPerson(id string) Person {
	return Person{ID: id, Gender: GenderUnknown, IsAlive: true}
}

// ValidatePersonID checks that id is usable as a person identifier:
// non-empty, at most MaxPersonIDLength bytes, and free of whitespace and
// control characters.
func ValidatePersonID(id string) error {
	if id == "" {
		return ErrInvalidPersonID
	}
	if len(id) > MaxPersonIDLength {
		return ErrInvalidPersonID
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == unicode.ReplacementChar {
			return ErrInvalidPersonID
		}
	}
	return nil
}
