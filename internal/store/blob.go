package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore keeps the raw bytes of uploaded files so a load can be audited
// or replayed after the fact.
type BlobStore interface {
	Save(name string, r io.Reader) (ref string, err error)
	Open(ref string) (io.ReadCloser, error)
}

// FSBlobStore stores blobs as files under a root directory. References are
// generated server-side, so user-supplied names never become paths.
type FSBlobStore struct {
	root string
}

// NewFSBlobStore creates the root directory if needed and returns the store.
func NewFSBlobStore(root string) (*FSBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSBlobStore{root: root}, nil
}

// Save writes the stream to a new blob and returns its reference. The
// original file name survives only as a sanitized suffix for operators
// browsing the directory.
func (s *FSBlobStore) Save(name string, r io.Reader) (string, error) {
	ref := uuid.New().String()
	if suffix := safeSuffix(name); suffix != "" {
		ref += "_" + suffix
	}

	f, err := os.Create(filepath.Join(s.root, ref))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	return ref, nil
}

// Open returns the blob's contents. References are validated to stay inside
// the root; anything path-like is rejected.
func (s *FSBlobStore) Open(ref string) (io.ReadCloser, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.ContainsAny(ref, `/\`) {
		return nil, fmt.Errorf("invalid blob reference %q", ref)
	}
	f, err := os.Open(filepath.Join(s.root, ref))
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// safeSuffix reduces a file name to a short, path-safe fragment.
func safeSuffix(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 60 {
		s = s[len(s)-60:]
	}
	return s
}
