package store

import (
	"io"
	"strings"
	"testing"
)

func TestFSBlobStore_RoundTrip(t *testing.T) {
	s, err := NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBlobStore error: %v", err)
	}

	ref, err := s.Save("people.csv", strings.NewReader("Name,Email\nAlice,a@x.com\n"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if ref == "" {
		t.Fatal("Save returned empty reference")
	}
	if !strings.HasSuffix(ref, "people.csv") {
		t.Errorf("ref = %q, want sanitized name suffix", ref)
	}

	rc, err := s.Open(ref)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(data) != "Name,Email\nAlice,a@x.com\n" {
		t.Errorf("blob content = %q", data)
	}
}

func TestFSBlobStore_UniqueRefs(t *testing.T) {
	s, err := NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBlobStore error: %v", err)
	}

	a, err := s.Save("same.csv", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	b, err := s.Save("same.csv", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if a == b {
		t.Errorf("two saves of the same name share ref %q", a)
	}
}

func TestFSBlobStore_HostileNames(t *testing.T) {
	s, err := NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBlobStore error: %v", err)
	}

	// A path-like upload name must not escape the root.
	ref, err := s.Save("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if strings.ContainsAny(ref, `/\`) {
		t.Errorf("ref %q contains path separators", ref)
	}
	if strings.Contains(ref, "..") {
		t.Errorf("ref %q contains traversal dots", ref)
	}
}

func TestFSBlobStore_OpenRejectsPaths(t *testing.T) {
	s, err := NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBlobStore error: %v", err)
	}

	for _, ref := range []string{"", "../secret", "a/b", `a\b`} {
		if _, err := s.Open(ref); err == nil {
			t.Errorf("Open(%q) should fail", ref)
		}
	}
}

func TestFSBlobStore_OpenMissing(t *testing.T) {
	s, err := NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSBlobStore error: %v", err)
	}
	if _, err := s.Open("no-such-blob"); err == nil {
		t.Error("Open of missing blob should fail")
	}
}
