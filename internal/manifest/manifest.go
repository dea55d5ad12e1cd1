package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ErrMalformedManifest marks manifest output that fails schema
// validation. Untrusted output either parses into exactly this schema
// or the candidate is rejected; there is no partial acceptance.
var ErrMalformedManifest = errors.New("malformed manifest")

// Manifest is a template's self-declared metadata, produced by running
// the template binary with the manifest flag. It is untrusted until
// Parse has validated it.
type Manifest struct {
	Name             string          `json:"name"`
	DisplayName      string          `json:"displayName"`
	Description      string          `json:"description"`
	Version          string          `json:"version"`
	Author           string          `json:"author"`
	License          string          `json:"license"`
	Category         string          `json:"category"`
	Keywords         []string        `json:"keywords,omitempty"`
	MinPrestoVersion string          `json:"minPrestoVersion"`
	Fonts            []string        `json:"fonts,omitempty"`
	Fields           json.RawMessage `json:"fields,omitempty"`
}

// Parse decodes and validates manifest bytes captured from an untrusted
// binary. Unknown fields are rejected: an attribute the schema does not
// know is a validation failure, not something to silently carry along.
func Parse(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after manifest object", ErrMalformedManifest)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	required := []struct {
		field, value string
	}{
		{"name", m.Name},
		{"displayName", m.DisplayName},
		{"description", m.Description},
		{"version", m.Version},
		{"author", m.Author},
		{"license", m.License},
		{"category", m.Category},
		{"minPrestoVersion", m.MinPrestoVersion},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: missing required field %q", ErrMalformedManifest, r.field)
		}
	}

	if err := ValidateName(m.Name); err != nil {
		return fmt.Errorf("%w: name: %v", ErrMalformedManifest, err)
	}

	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("%w: version %q: %v", ErrMalformedManifest, m.Version, err)
	}
	if _, err := semver.NewVersion(m.MinPrestoVersion); err != nil {
		return fmt.Errorf("%w: minPrestoVersion %q: %v", ErrMalformedManifest, m.MinPrestoVersion, err)
	}

	return nil
}
