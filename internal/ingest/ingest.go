// Package ingest turns uploaded files and local directories into document
// records ready for dispatch. It detects media types, validates PDFs, and
// rejects formats the extraction service cannot take.
package ingest

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"colacheck/internal/records"
)

// MaxFileSize caps a single document payload at 25 MB. The extraction
// service rejects larger payloads anyway; failing early keeps the queue
// clean.
const MaxFileSize = 25 << 20

// mediaTypes maps file extensions to the content types the extraction
// service accepts.
var mediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// MediaType resolves the content type for a file. The extension wins when
// recognized; otherwise the payload is sniffed. Returns false for formats
// the extraction service does not accept.
func MediaType(fileName string, payload []byte) (string, bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if mt, ok := mediaTypes[ext]; ok {
		return mt, true
	}

	sniffed := http.DetectContentType(payload)
	// DetectContentType returns parameters for some types (e.g. text/plain;
	// charset=utf-8); strip them before matching.
	if i := strings.Index(sniffed, ";"); i >= 0 {
		sniffed = strings.TrimSpace(sniffed[:i])
	}
	for _, mt := range mediaTypes {
		if mt == sniffed {
			return sniffed, true
		}
	}
	return "", false
}

// File builds a pending document record from an in-memory payload, as
// received from an HTTP upload. PDF payloads are validated and their page
// count recorded.
func File(fileName string, payload []byte) (*records.DocumentRecord, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%s: empty file", fileName)
	}
	if len(payload) > MaxFileSize {
		return nil, fmt.Errorf("%s: file exceeds %d byte limit", fileName, MaxFileSize)
	}

	mediaType, ok := MediaType(fileName, payload)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported file type", fileName)
	}

	rec := records.New(fileName, mediaType, payload)

	if mediaType == "application/pdf" {
		pages, err := api.PageCount(bytes.NewReader(payload), nil)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid PDF: %w", fileName, err)
		}
		rec.PageCount = pages
	}

	return rec, nil
}

// Path reads a file from disk and builds a pending document record.
func Path(path string) (*records.DocumentRecord, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rec, err := File(filepath.Base(path), payload)
	if err != nil {
		return nil, err
	}
	rec.Path = path
	return rec, nil
}

// Dir reads every supported file in a directory (non-recursive) and builds
// records in file-name order. Unsupported files are skipped with a log line
// rather than failing the whole batch.
func Dir(dir string, logger *slog.Logger) ([]*records.DocumentRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var recs []*records.DocumentRecord
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := mediaTypes[ext]; !ok {
			logger.Debug("skipping unsupported file", "file", name)
			continue
		}
		rec, err := Path(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping file", "file", name, "error", err)
			continue
		}
		recs = append(recs, rec)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("no supported documents in %s", dir)
	}
	return recs, nil
}
