package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrIntegrityMismatch marks a digest mismatch or an artifact absent from
// the checksum listing. It is fatal for the candidate and never bypassable.
var ErrIntegrityMismatch = errors.New("integrity mismatch")

// Verification is proof that a file's digest matched the checksum listing.
// Authorize accepts only this value, so the execute bit cannot be granted
// without a successful verification first.
type Verification struct {
	Path   string
	Digest string
}

// VerifyFile computes the SHA-256 digest of the file and compares it
// against the expected value for its basename in the checksum set.
func VerifyFile(path string, set ChecksumSet) (*Verification, error) {
	filename := filepath.Base(path)

	expected, ok := set.Lookup(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s absent from checksum listing", ErrIntegrityMismatch, filename)
	}

	actual, err := fileSHA256(path)
	if err != nil {
		return nil, fmt.Errorf("compute digest: %w", err)
	}

	if !strings.EqualFold(actual, expected) {
		return nil, fmt.Errorf("%w: %s digest %s, expected %s",
			ErrIntegrityMismatch, filename, actual, expected)
	}

	return &Verification{Path: path, Digest: actual}, nil
}

// Authorize grants execute permission on a verified artifact.
// Verification happens strictly before any permission change.
func Authorize(v *Verification) error {
	if v == nil {
		return fmt.Errorf("verification is required")
	}
	if err := os.Chmod(v.Path, 0o755); err != nil {
		return fmt.Errorf("grant execute permission: %w", err)
	}
	return nil
}

// fileSHA256 calculates the SHA-256 digest of a file as lowercase hex.
func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
