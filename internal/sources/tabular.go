package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readCSV loads an entire CSV file. Field counts are not enforced so
// ragged rows surface as short slices rather than read errors.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return decodeCSV(f, path)
}

// readCSVLatin1 loads a CSV file encoded as ISO 8859-1.
func readCSVLatin1(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return decodeCSV(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()), path)
}

func decodeCSV(r io.Reader, path string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// streamCSV calls fn for each row of a CSV file without materializing
// the whole file; the header row arrives first with index 0. Intended
// for the bulk exports that run to hundreds of megabytes.
func streamCSV(ctx context.Context, path string, fn func(i int, row []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for i := 0; ; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}
		if err := fn(i, row); err != nil {
			return err
		}
	}
}

// readWorkbook opens an Excel workbook and returns all rows of its
// first sheet.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s contains no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// listFiles returns the sorted paths of the regular files in dir that
// carry one of the given extensions. Office lock files are skipped.
func listFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range exts {
			if ext == want {
				paths = append(paths, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// firstFile returns the first file in dir carrying one of the given
// extensions, or ErrSourceUnavailable when none exist.
func firstFile(dir string, exts ...string) (string, error) {
	paths, err := listFiles(dir, exts...)
	if err != nil {
		return "", missingAsUnavailable(err, dir)
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("no %s files in %s: %w", strings.Join(exts, "/"), dir, ErrSourceUnavailable)
	}
	return paths[0], nil
}

// missingAsUnavailable converts a missing-file error into
// ErrSourceUnavailable so the extract stage can downgrade it to a
// warning. Other errors pass through unchanged.
func missingAsUnavailable(err error, what string) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", what, ErrSourceUnavailable)
	}
	return err
}

// headerIndex maps lowercased, trimmed header cells to their column
// positions. The first occurrence of a duplicated header wins.
func headerIndex(row []string) map[string]int {
	cols := make(map[string]int, len(row))
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		if _, exists := cols[name]; !exists {
			cols[name] = i
		}
	}
	return cols
}

// findColumn returns the leftmost column whose lowercased header
// satisfies match.
func findColumn(header map[string]int, match func(name string) bool) (int, bool) {
	best := -1
	for name, idx := range header {
		if match(name) && (best == -1 || idx < best) {
			best = idx
		}
	}
	return best, best != -1
}

// cellAt returns the trimmed cell at idx, or "" when the row is short.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseFloat converts a raw cell to a float. Thousands separators are
// stripped; blanks, placeholders and non-finite values report false.
func parseFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseInt converts a raw cell to an int, accepting float renderings
// such as "2015.0".
func parseInt(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// yearColumns maps plausible four-digit year headers to their column
// positions. Wide tables use it to locate their per-year value columns.
func yearColumns(row []string) map[int]int {
	years := make(map[int]int)
	for i, cell := range row {
		y, err := strconv.Atoi(strings.TrimSpace(cell))
		if err != nil || y < 1900 || y > 2100 {
			continue
		}
		if _, exists := years[y]; !exists {
			years[y] = i
		}
	}
	return years
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// yearFromDate extracts the first four-digit year from a date string,
// whatever its format.
func yearFromDate(s string) (int, bool) {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}
