package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"gdra/pkg/contracts/domain"
)

// DatasetFixtures provides test data and utilities for pipeline testing
type DatasetFixtures struct {
	TestDataDir string
}

// NewDatasetFixtures creates a new fixtures manager
func NewDatasetFixtures(testDataDir string) *DatasetFixtures {
	return &DatasetFixtures{
		TestDataDir: testDataDir,
	}
}

// CanonicalRecords returns canonical records for two entities across the
// early horizon years, with a deliberate gap at AAA/2001 so fusion and
// imputation paths see absent keys.
func (f *DatasetFixtures) CanonicalRecords(source string) []domain.CanonicalRecord {
	return []domain.CanonicalRecord{
		{
			Source:     source,
			EntityCode: "AAA",
			Year:       2000,
			Fields: map[string]float64{
				domain.FieldGDPPerCapita: 1000,
				domain.FieldPopulation:   1_000_000,
			},
		},
		{
			Source:     source,
			EntityCode: "AAA",
			Year:       2002,
			Fields: map[string]float64{
				domain.FieldGDPPerCapita: 1100,
				domain.FieldPopulation:   1_020_000,
			},
		},
		{
			Source:     source,
			EntityCode: "BBB",
			Year:       2000,
			Fields: map[string]float64{
				domain.FieldGDPPerCapita: 52000,
			},
		},
	}
}

// FusedTable returns a small sorted table with known values. AAA carries a
// smooth GDP series with a single disaster spike in 2001; BBB is sparse.
func (f *DatasetFixtures) FusedTable() *domain.FusedTable {
	rows := []*domain.FusedRecord{
		fusedRow("AAA", 2000, map[string]float64{
			domain.FieldGDPPerCapitaBest:    1000,
			domain.FieldPopulationBest:      1_000_000,
			domain.FieldGDPGrowthBest:       2.0,
			domain.FieldTotalDisasterDeaths: 0,
			domain.FieldTotalDisasterEvents: 0,
			domain.FieldHDI:                 0.70,
			domain.FieldNDGainReadiness:     0.40,
			domain.FieldNDGainVulnerability: 0.45,
			domain.FieldINFORMHazard:        3.5,
			domain.FieldWGIGovEffectiveness: -0.2,
		}),
		fusedRow("AAA", 2001, map[string]float64{
			domain.FieldGDPPerCapitaBest:      1066.7,
			domain.FieldPopulationBest:        1_010_000,
			domain.FieldGDPGrowthBest:         2.5,
			domain.FieldTotalDisasterDeaths:   5,
			domain.FieldTotalDisasterAffected: 20_000,
			domain.FieldTotalDisasterEvents:   1,
			domain.FieldGDACSSeverityWeight:   2.0,
			domain.FieldHDI:                   0.705,
		}),
		fusedRow("AAA", 2002, map[string]float64{
			domain.FieldGDPPerCapitaBest:    1133.3,
			domain.FieldPopulationBest:      1_020_000,
			domain.FieldGDPGrowthBest:       3.0,
			domain.FieldTotalDisasterDeaths: 0,
			domain.FieldTotalDisasterEvents: 0,
			domain.FieldHDI:                 0.71,
		}),
		fusedRow("AAA", 2003, map[string]float64{
			domain.FieldGDPPerCapitaBest:    1200,
			domain.FieldPopulationBest:      1_030_000,
			domain.FieldGDPGrowthBest:       3.1,
			domain.FieldTotalDisasterDeaths: 0,
			domain.FieldTotalDisasterEvents: 0,
		}),
		fusedRow("BBB", 2000, map[string]float64{
			domain.FieldGDPPerCapitaBest: 52_000,
			domain.FieldPopulationBest:   5_000_000,
		}),
		fusedRow("BBB", 2002, map[string]float64{
			domain.FieldGDPPerCapitaBest: 54_000,
		}),
	}

	table := &domain.FusedTable{Rows: rows}
	table.Sort()
	return table
}

func fusedRow(code string, year int, fields map[string]float64) *domain.FusedRecord {
	rec := domain.NewFusedRecord(code, year)
	for name, value := range fields {
		rec.SetField(name, value)
	}
	return rec
}

// WriteCSVFile writes rows as a CSV file under TestDataDir and returns its path
func (f *DatasetFixtures) WriteCSVFile(relPath string, rows [][]string) (string, error) {
	path := filepath.Join(f.TestDataDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write csv rows: %w", err)
	}
	w.Flush()
	return path, w.Error()
}

// WriteTextFile writes raw content under TestDataDir and returns its path
func (f *DatasetFixtures) WriteTextFile(relPath, content string) (string, error) {
	path := filepath.Join(f.TestDataDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// CreateCorruptedSourceFile creates various malformed source files for
// adapter robustness tests
func (f *DatasetFixtures) CreateCorruptedSourceFile(relPath, corruptionType string) (string, error) {
	var data []byte

	switch corruptionType {
	case "empty":
		data = []byte{}
	case "header_only":
		data = []byte("iso3,year,value\n")
	case "ragged_rows":
		data = []byte("iso3,year,value\nAAA,2000\nBBB,2001,1,extra\n")
	case "binary_data":
		data = make([]byte, 256)
		for i := range data {
			data[i] = byte(i % 256)
		}
	case "null_bytes":
		data = []byte("iso3,year,value\nAAA\x00,2000,1\n")
	default:
		return "", fmt.Errorf("unknown corruption type: %s", corruptionType)
	}

	path := filepath.Join(f.TestDataDir, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write corrupted file: %w", err)
	}
	return path, nil
}

// CleanupTestData removes all test data files
func (f *DatasetFixtures) CleanupTestData() error {
	return os.RemoveAll(f.TestDataDir)
}
