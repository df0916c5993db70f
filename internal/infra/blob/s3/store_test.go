package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"orthoinfer/internal/blob/core"
)

func TestMockRoundtrip(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()

	if s.Driver() != core.DriverS3 {
		t.Fatalf("Driver = %s", s.Driver())
	}

	info, err := s.Put(ctx, "reports/eligible_mmus_75.txt", strings.NewReader("1\tx\n"), core.PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Key != "reports/eligible_mmus_75.txt" {
		t.Fatalf("Key = %q", info.Key)
	}

	got, rc, err := s.Get(ctx, "reports/eligible_mmus_75.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "1\tx\n" {
		t.Fatalf("body = %q", body)
	}
	if got.ContentType != "text/plain" {
		t.Fatalf("ContentType = %q", got.ContentType)
	}
}

func TestMockOverwrite(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("first"), core.PutOptions{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("second"), core.PutOptions{}); err != nil {
		t.Fatalf("overwrite Put: %v", err)
	}
	_, rc, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "second" {
		t.Fatalf("body = %q", body)
	}
}

func TestMockHeadDeleteList(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	for _, key := range []string{"runs/a", "runs/b", "other/c"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	if _, err := s.Head(ctx, "runs/a"); err != nil {
		t.Fatalf("Head: %v", err)
	}
	if _, err := s.Head(ctx, "missing"); err == nil {
		t.Fatalf("Head of missing key should error")
	}
	if _, _, err := s.Get(ctx, "missing"); err == nil {
		t.Fatalf("Get of missing key should error")
	}

	infos, err := s.List(ctx, "runs/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "runs/a" || infos[1].Key != "runs/b" {
		t.Fatalf("List = %+v", infos)
	}

	if _, err := s.Delete(ctx, "runs/a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Head(ctx, "runs/a"); err == nil {
		t.Fatalf("deleted key still present")
	}
}

func TestDecodeAWSChunked(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "unsigned with trailer checksum",
			in:   "4\r\n1\tx\n\r\n0\r\nx-amz-checksum-crc32:YTFhtw==\r\n\r\n",
			want: "1\tx\n",
			ok:   true,
		},
		{
			name: "signed chunks",
			in:   "4;chunk-signature=abcd\r\nbody\r\n0;chunk-signature=ef01\r\n\r\n",
			want: "body",
			ok:   true,
		},
		{
			name: "multiple chunks",
			in:   "3\r\nfoo\r\n3\r\nbar\r\n0\r\n\r\n",
			want: "foobar",
			ok:   true,
		},
		{
			name: "plain body",
			in:   "just some text",
			ok:   false,
		},
	}
	for _, tc := range cases {
		got, ok := decodeAWSChunked([]byte(tc.in))
		if ok != tc.ok {
			t.Fatalf("%s: ok = %v, want %v", tc.name, ok, tc.ok)
		}
		if ok && string(got) != tc.want {
			t.Fatalf("%s: decoded %q, want %q", tc.name, got, tc.want)
		}
	}
}
