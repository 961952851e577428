package sources

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"gdra/pkg/contracts/domain"
)

// desinventarFolderCodes remaps the export folder suffixes that differ
// from the ISO3 code of the entity they contain.
var desinventarFolderCodes = map[string]string{
	"AR2":   "ARM",
	"LAO2":  "LAO",
	"NG_OY": "NGA",
}

// diExport mirrors a DesInventar country export: a fichas element
// holding one TR record per disaster event. The root element name
// varies between exports and is left unconstrained.
type diExport struct {
	Fichas struct {
		Records []diRecord `xml:"TR"`
	} `xml:"fichas"`
}

type diRecord struct {
	Year            string `xml:"fechano"`
	Deaths          string `xml:"muertos"`
	Affected        string `xml:"afectados"`
	HousesDestroyed string `xml:"vivdest"`
	HousesDamaged   string `xml:"vivafec"`
}

// Desinventar loads the DesInventar disaster loss archive: one folder
// per country under extracted/, named DI_export_<code>, each holding
// XML exports of granular loss records. Losses are summed per
// entity-year and events counted.
type Desinventar struct{}

// Source implements Adapter.
func (Desinventar) Source() string { return domain.SourceDesinventar }

// Parse implements Adapter.
func (Desinventar) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	extractedDir := filepath.Join(pc.Dir, "extracted")
	entries, err := os.ReadDir(extractedDir)
	if err != nil {
		return nil, missingAsUnavailable(err, extractedDir)
	}

	rs := newRecordSet(domain.SourceDesinventar)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw := strings.ToUpper(strings.TrimPrefix(entry.Name(), "DI_export_"))
		if mapped, ok := desinventarFolderCodes[raw]; ok {
			raw = mapped
		}
		code, ok := pc.resolveCode(raw)
		if !ok {
			continue
		}

		xmlFiles, err := listFiles(filepath.Join(extractedDir, entry.Name()), ".xml")
		if err != nil {
			continue
		}
		for _, path := range xmlFiles {
			parseDesinventarExport(pc, rs, path, code)
		}
	}

	return emit(pc, rs), nil
}

// parseDesinventarExport folds one country export into the aggregates.
// Unreadable exports are counted and skipped; a record with a
// non-numeric loss tally is dropped whole rather than partially
// summed.
func parseDesinventarExport(pc *ParseContext, rs *recordSet, path, code string) {
	data, err := os.ReadFile(path)
	if err != nil {
		pc.Counters.ParseFailures++
		return
	}

	var export diExport
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charsetReader
	if err := decoder.Decode(&export); err != nil {
		pc.Counters.ParseFailures++
		pc.Logger.Warn("skipping malformed loss export",
			slog.String("file", filepath.Base(path)),
			slog.String("error", err.Error()))
		return
	}

	for _, record := range export.Fichas.Records {
		pc.Counters.RowsRead++

		yearRaw := strings.TrimSpace(record.Year)
		if yearRaw == "" {
			continue
		}
		year, err := strconv.Atoi(yearRaw)
		if err != nil {
			pc.Counters.ParseFailures++
			continue
		}
		if !pc.inHorizon(year) {
			continue
		}

		deaths, ok := lossTally(record.Deaths)
		if !ok {
			pc.Counters.ParseFailures++
			continue
		}
		affected, ok := lossTally(record.Affected)
		if !ok {
			pc.Counters.ParseFailures++
			continue
		}
		destroyed, ok := lossTally(record.HousesDestroyed)
		if !ok {
			pc.Counters.ParseFailures++
			continue
		}
		damaged, ok := lossTally(record.HousesDamaged)
		if !ok {
			pc.Counters.ParseFailures++
			continue
		}

		rs.Add(code, year, domain.FieldDesinventarEvents, 1)
		rs.Add(code, year, domain.FieldDesinventarDeaths, deaths)
		rs.Add(code, year, domain.FieldDesinventarAffected, affected)
		rs.Add(code, year, domain.FieldDesinventarHousesDestroyed, destroyed)
		rs.Add(code, year, domain.FieldDesinventarHousesDamaged, damaged)
	}
}

// lossTally parses one loss element, treating a missing element as
// zero.
func lossTally(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return float64(v), true
}

// charsetReader decodes the legacy single-byte encodings the exports
// declare.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return input, nil
	case "iso-8859-1", "iso8859-1", "latin-1", "latin1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
