// Package artifact verifies downloaded release assets before anything is
// allowed to execute them.
//
// The ordering here is the pipeline's core security invariant: a file is
// hashed and compared against the release checksum listing first, and only
// the resulting Verification value can grant the execute bit. A mismatch
// is a hard stop for that candidate.
package artifact

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ChecksumSet maps artifact filenames to their expected hex digests,
// parsed from one release's checksum listing. Immutable once parsed.
type ChecksumSet map[string]string

// ParseChecksums parses a checksum listing of lines
// "<hex-digest><whitespace><filename>", one per platform artifact.
// Malformed lines are skipped; an empty result is legal but will fail
// every lookup.
func ParseChecksums(r io.Reader) (ChecksumSet, error) {
	set := make(ChecksumSet)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		set[parts[1]] = parts[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan checksum listing: %w", err)
	}

	return set, nil
}

// Lookup returns the expected digest for a filename.
// Exact match first, then basename comparison for listings that record
// paths rather than bare filenames.
func (s ChecksumSet) Lookup(filename string) (string, bool) {
	if digest, ok := s[filename]; ok {
		return digest, true
	}
	for recorded, digest := range s {
		if filepath.Base(recorded) == filename {
			return digest, true
		}
	}
	return "", false
}
