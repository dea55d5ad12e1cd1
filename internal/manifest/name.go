// Package manifest defines the template manifest schema and validates
// everything an untrusted binary declares about itself.
package manifest

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidIdentifier marks a candidate-supplied name that fails the
// slug grammar. It is fatal for the candidate and prevents any
// filesystem interaction keyed by that name.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// namePattern is the strict slug grammar for template identifiers:
// lowercase ASCII letters and digits, internal hyphens, no leading or
// trailing hyphen. Everything used to construct a path must match it.
var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateName accepts only identifiers matching the slug grammar.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}
