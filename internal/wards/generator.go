package wards

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
)

const wardInterface = `export interface Ward {
  id: number;
  name: string;
  zone: string;
}

`

// WriteTS renders entries as a typed TypeScript array, in order.
func WriteTS(w io.Writer, entries []models.WardRosterEntry) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(wardInterface)
	bw.WriteString("export const DELHI_WARDS: Ward[] = [\n")
	for _, e := range entries {
		name, err := quote(e.Name)
		if err != nil {
			return err
		}
		zone, err := quote(e.Zone)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "  { id: %d, name: %s, zone: %s },\n", e.ID, name, zone)
	}
	bw.WriteString("];\n")

	return bw.Flush()
}

// quote renders s as a double-quoted string literal valid in both JSON and
// TypeScript.
func quote(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("quoting %q: %w", s, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// WriteTSFile writes the generated module to path, creating parent
// directories and replacing any existing file.
func WriteTSFile(path string, entries []models.WardRosterEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := WriteTS(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
