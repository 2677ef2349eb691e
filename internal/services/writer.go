package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
)

// WardFileWriter writes one JSON document per ward into a directory.
type WardFileWriter struct {
	dir string
}

func NewWardFileWriter(dir string) *WardFileWriter {
	return &WardFileWriter{dir: dir}
}

// Path returns the output file for a ward number.
func (w *WardFileWriter) Path(wardNumber string) string {
	return filepath.Join(w.dir, fmt.Sprintf("ward_%s.json", wardNumber))
}

// Write encodes reading with 4-space indentation and replaces any previous
// file for the same ward. The document is fully encoded before the file is
// touched.
func (w *WardFileWriter) Write(reading *models.WardReading) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(reading); err != nil {
		return "", fmt.Errorf("encoding ward %s: %w", reading.WardNumber, err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := w.Path(reading.WardNumber)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	return path, nil
}
