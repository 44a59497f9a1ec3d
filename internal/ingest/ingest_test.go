package ingest

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"colacheck/internal/records"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestMediaType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		payload  []byte
		want     string
		ok       bool
	}{
		{"pdf extension", "form.pdf", []byte("%PDF-1.4"), "application/pdf", true},
		{"png extension", "label.png", pngHeader, "image/png", true},
		{"jpg extension", "label.jpg", []byte{0xff, 0xd8}, "image/jpeg", true},
		{"jpeg extension", "label.jpeg", []byte{0xff, 0xd8}, "image/jpeg", true},
		{"webp extension", "label.webp", nil, "image/webp", true},
		{"gif extension", "label.gif", nil, "image/gif", true},
		{"uppercase extension", "LABEL.PNG", nil, "image/png", true},
		{"sniffed png without extension", "label", pngHeader, "image/png", true},
		{"text file", "notes.txt", []byte("hello"), "", false},
		{"unknown binary", "blob.bin", []byte{0x00, 0x01, 0x02, 0x03}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MediaType(tt.fileName, tt.payload)
			if ok != tt.ok || got != tt.want {
				t.Errorf("MediaType(%q) = (%q, %v), want (%q, %v)", tt.fileName, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFile(t *testing.T) {
	rec, err := File("label.png", pngHeader)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if rec.ID == "" {
		t.Error("record should get an id")
	}
	if rec.FileName != "label.png" || rec.MediaType != "image/png" {
		t.Errorf("got %s/%s", rec.FileName, rec.MediaType)
	}
	if rec.Status != records.StatusPending {
		t.Errorf("status = %s, want %s", rec.Status, records.StatusPending)
	}
	if !bytes.Equal(rec.Payload, pngHeader) {
		t.Error("payload should round-trip")
	}
}

func TestFile_Rejections(t *testing.T) {
	if _, err := File("empty.png", nil); err == nil {
		t.Error("empty payload should be rejected")
	}
	if _, err := File("notes.txt", []byte("hello")); err == nil {
		t.Error("unsupported type should be rejected")
	}
	if _, err := File("broken.pdf", []byte("not a pdf at all")); err == nil {
		t.Error("malformed PDF should be rejected")
	}
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"b-label.png": pngHeader,
		"a-label.png": pngHeader,
		"notes.txt":   []byte("ignore me"),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recs, err := Dir(dir, logger)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	// File-name order keeps batches deterministic.
	if recs[0].FileName != "a-label.png" || recs[1].FileName != "b-label.png" {
		t.Errorf("order = %s, %s", recs[0].FileName, recs[1].FileName)
	}
	if !strings.HasSuffix(recs[0].Path, "a-label.png") {
		t.Errorf("path not recorded: %q", recs[0].Path)
	}
}

func TestDir_Empty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := Dir(dir, logger); err == nil {
		t.Error("directory without supported documents should error")
	}
	if _, err := Dir(filepath.Join(dir, "missing"), logger); err == nil {
		t.Error("missing directory should error")
	}
}
