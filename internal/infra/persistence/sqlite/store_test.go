package sqlite

import (
	"path/filepath"
	"testing"

	"orthoinfer/pkg/domain"
)

func TestOpenFlushReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Path() != path {
		t.Fatalf("Path = %q, want %q", s.Path(), path)
	}

	sp := domain.New(domain.ClassSpecies)
	sp.Set(domain.AttrName, "Mus musculus")
	sp.DisplayName = "Mus musculus"
	s.Store(sp)

	rle := domain.New(domain.ClassReaction)
	rle.Set(domain.AttrSpecies, sp)
	rle.DisplayName = "example"
	s.Store(rle)

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, ok := reopened.Fetch(rle.ID)
	if !ok {
		t.Fatalf("reaction missing after reload")
	}
	if got.DisplayName != "example" {
		t.Fatalf("display name lost: %q", got.DisplayName)
	}
	ref := got.Ref(domain.AttrSpecies)
	if ref == nil || ref.Str(domain.AttrName) != "Mus musculus" {
		t.Fatalf("species reference lost: %v", ref)
	}
}

func TestFlushReplacesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	s.Store(domain.New(domain.ClassReaction))
	if err := s.Flush(); err != nil {
		t.Fatalf("first Flush: %v", err)
	}
	s.Store(domain.New(domain.ClassPathway))
	if err := s.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}

	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 buckets, got %d", n)
	}
}

func TestOpenEmptyFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()
	if s.Len() != 0 {
		t.Fatalf("fresh store should be empty, has %d instances", s.Len())
	}
}
