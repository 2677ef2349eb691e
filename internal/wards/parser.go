package wards

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
)

// UnknownZone is recorded when a line ends in none of the known zones.
const UnknownZone = "Unknown"

const headerPrefix = "Ward No."

// DefaultZones are the zone suffixes found in the Delhi ward listing.
var DefaultZones = []string{
	"Shahdara South Zone", "Shahdara North Zone", "City S.P.Zone",
	"Najafgarh Zone", "Central Zone", "South Zone", "West Zone",
	"Civil Line", "Keshavpuram", "Karolbagh", "Rohini", "Narela", "Shahdara",
}

var lineRe = regexp.MustCompile(`^(\d+)\s+(.+)$`)

// Parser splits roster lines into id, ward name and zone.
type Parser struct {
	zones []string
}

// NewParser orders zones longest first so a zone that is a suffix of
// another ("South Zone", "Shahdara South Zone") never shadows it. Equal
// lengths keep their given order.
func NewParser(zones []string) *Parser {
	sorted := append([]string(nil), zones...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return &Parser{zones: sorted}
}

// Zones returns the suffixes in match order.
func (p *Parser) Zones() []string {
	return p.zones
}

// ParseLine parses one roster line. ok is false for blank lines, the header
// and lines that do not start with a ward number.
func (p *Parser) ParseLine(line string) (models.WardRosterEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, headerPrefix) {
		return models.WardRosterEntry{}, false
	}

	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return models.WardRosterEntry{}, false
	}

	id, err := strconv.Atoi(m[1])
	if err != nil {
		return models.WardRosterEntry{}, false
	}

	rest := m[2]
	entry := models.WardRosterEntry{ID: id, Name: rest, Zone: UnknownZone}
	for _, z := range p.zones {
		if strings.HasSuffix(rest, z) {
			entry.Zone = z
			entry.Name = strings.TrimSpace(strings.TrimSuffix(rest, z))
			break
		}
	}

	return entry, true
}

// Result is the outcome of parsing a whole listing.
type Result struct {
	Entries []models.WardRosterEntry
	Lines   int
	// Skipped counts non-blank, non-header lines that did not match.
	Skipped int
}

// Parse reads a listing line by line, keeping input order.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	res := &Result{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		res.Lines++
		line := scanner.Text()

		entry, ok := p.ParseLine(line)
		if !ok {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.HasPrefix(trimmed, headerPrefix) {
				res.Skipped++
			}
			continue
		}
		res.Entries = append(res.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ward listing: %w", err)
	}

	return res, nil
}

// ParseFile parses the listing at path.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ward listing: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}
