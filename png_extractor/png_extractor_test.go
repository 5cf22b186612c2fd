package png_extractor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func container(parts ...string) []byte {
	var buf bytes.Buffer

	for _, p := range parts {
		buf.WriteString(p)
	}

	return buf.Bytes()
}

func TestLocate(t *testing.T) {
	payload := "\x00\x00\x00\x0DIHDR-image-bytes"

	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr error
	}{
		{
			name: "prefix and suffix",
			data: container("snagit header", startSignature, payload, endSignature, "trailing xml"),
			want: startSignature + payload + endSignature,
		},
		{
			name: "png only",
			data: container(startSignature, endSignature),
			want: startSignature + endSignature,
		},
		{
			name: "end before and after start",
			data: container("junk", endSignature, "more", startSignature, payload, endSignature, "tail", endSignature),
			want: startSignature + payload + endSignature,
		},
		{
			name: "second image ignored",
			data: container(startSignature, "first", endSignature, startSignature, "second", endSignature),
			want: startSignature + "first" + endSignature,
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: ErrStartSignatureNotFound,
		},
		{
			name:    "no start",
			data:    container("data", endSignature),
			wantErr: ErrStartSignatureNotFound,
		},
		{
			name:    "truncated start",
			data:    container(startSignature[:7], payload, endSignature),
			wantErr: ErrStartSignatureNotFound,
		},
		{
			name:    "end only before start",
			data:    container(endSignature, startSignature, payload),
			wantErr: ErrEndSignatureNotFound,
		},
		{
			name:    "truncated end",
			data:    container(startSignature, payload, endSignature[:7]),
			wantErr: ErrEndSignatureNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, err := Locate(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := string(tt.data[span.Start:span.End])
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}

			if span.Len() != len(tt.want) {
				t.Errorf("expected length %d, got %d", len(tt.want), span.Len())
			}
		})
	}
}

func TestDefaultDestination(t *testing.T) {
	tests := map[string]string{
		"image.snagx":          "image.png",
		"dir/shot.final.snagx": "dir/shot.final.png",
		"dir.d/noext":          "dir.d/noext.png",
		".snagx":               ".snagx.png",
		"dir/.hidden.snagx":    "dir/.hidden.png",
		"already.png":          "already.png",
	}

	for in, want := range tests {
		if got := DefaultDestination(in); got != want {
			t.Errorf("DefaultDestination(%q): expected %q, got %q", in, want, got)
		}
	}
}

func newTestExtractor(t *testing.T) Extractor {
	t.Helper()

	e, err := New(Config{})
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}

	return e
}

func TestExtractFileDefaultDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "image.snagx")
	want := container(startSignature, "pixels", endSignature)

	if err := os.WriteFile(src, container("PK\x03\x04", string(want), "</xml>"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := newTestExtractor(t).ExtractFile(src, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.DestinationPath != filepath.Join(dir, "image.png") {
		t.Errorf("unexpected destination %s", res.DestinationPath)
	}

	got, err := os.ReadFile(res.DestinationPath)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}

	if res.Span.Start != 4 || res.Span.End != 4+len(want) {
		t.Errorf("unexpected span %+v", res.Span)
	}
}

func TestExtractFileExplicitDestinationOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.snagx")
	dst := filepath.Join(dir, "out.png")
	want := container(startSignature, endSignature)

	if err := os.WriteFile(src, want, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(dst, []byte("a much longer pre-existing file"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := newTestExtractor(t).ExtractFile(src, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}

	if _, err := os.Stat(filepath.Join(dir, "in.png")); !os.IsNotExist(err) {
		t.Errorf("default destination should not be written when one is given")
	}
}

func TestExtractFileNoStartCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.snagx")

	if err := os.WriteFile(src, container("nothing here", endSignature), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestExtractor(t).ExtractFile(src, "")
	if !errors.Is(err, ErrStartSignatureNotFound) {
		t.Fatalf("expected start signature error, got %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "broken.png")); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat returned %v", err)
	}
}

func TestExtractFileMissingSource(t *testing.T) {
	_, err := newTestExtractor(t).ExtractFile(filepath.Join(t.TempDir(), "missing.snagx"), "")

	if !errors.Is(err, &ReadError{}) {
		t.Fatalf("expected ReadError, got %v", err)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped not-exist error, got %v", err)
	}
}

func TestExtractFileUnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.snagx")

	if err := os.WriteFile(src, container(startSignature, endSignature), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "no-such-dir", "out.png")

	_, err := newTestExtractor(t).ExtractFile(src, dst)
	if !errors.Is(err, &WriteError{}) {
		t.Fatalf("expected WriteError, got %v", err)
	}

	var writeErr *WriteError
	if !errors.As(err, &writeErr) || writeErr.Path != dst {
		t.Errorf("expected WriteError for %s, got %v", dst, err)
	}
}
