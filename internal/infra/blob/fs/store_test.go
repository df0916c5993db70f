package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	"orthoinfer/internal/blob/core"
)

func TestPutGetRoundtrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	info, err := s.Put(ctx, "reports/inferred_mmus_75.txt", strings.NewReader("1\tfoo\n"), core.PutOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"run_id": "abc"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Size != 6 || info.ETag == "" {
		t.Fatalf("unexpected info: %+v", info)
	}

	got, rc, err := s.Get(ctx, "reports/inferred_mmus_75.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "1\tfoo\n" {
		t.Fatalf("body = %q", body)
	}
	if got.ContentType != "text/plain" || got.Metadata["run_id"] != "abc" {
		t.Fatalf("metadata lost: %+v", got)
	}
}

func TestPutOverwrites(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("first"), core.PutOptions{}); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("second"), core.PutOptions{}); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	_, rc, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "second" {
		t.Fatalf("overwrite failed: %q", body)
	}
}

func TestHeadDeleteList(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"a/one.txt", "a/two.txt", "b/three.txt"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	if _, err := s.Head(ctx, "a/one.txt"); err != nil {
		t.Fatalf("Head: %v", err)
	}
	if _, err := s.Head(ctx, "missing"); err == nil {
		t.Fatalf("Head of missing blob should error")
	}

	infos, err := s.List(ctx, "a/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "a/one.txt" || infos[1].Key != "a/two.txt" {
		t.Fatalf("List = %+v", infos)
	}

	existed, err := s.Delete(ctx, "a/one.txt")
	if err != nil || !existed {
		t.Fatalf("Delete = %v, %v", existed, err)
	}
	existed, err = s.Delete(ctx, "a/one.txt")
	if err != nil || existed {
		t.Fatalf("second Delete = %v, %v", existed, err)
	}
}

func TestKeySanitization(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../escape"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}
