package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/pkg/contracts/domain"
)

func writeDesinventarExport(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDesinventar_Parse(t *testing.T) {
	dir := t.TempDir()
	extracted := filepath.Join(dir, "extracted")

	// Armenia ships under the legacy AR2 folder code, encoded as ISO
	// 8859-1 with the declaration to match.
	writeDesinventarExport(t, filepath.Join(extracted, "DI_export_AR2", "datos.xml"),
		"<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n"+
			"<DESINVENTAR><fichas>"+
			"<TR><fechano>2010</fechano><muertos>3</muertos><afectados>100</afectados><vivdest>5</vivdest><vivafec>10</vivafec><lugar>Ca\xf1ada</lugar></TR>"+
			"<TR><fechano>2010</fechano><muertos>2</muertos></TR>"+
			"<TR><fechano>1999</fechano><muertos>9</muertos></TR>"+
			"<TR><fechano></fechano><muertos>1</muertos></TR>"+
			"<TR><fechano>2010</fechano><muertos>abc</muertos></TR>"+
			"</fichas></DESINVENTAR>")
	writeDesinventarExport(t, filepath.Join(extracted, "DI_export_ken", "fichas.xml"),
		"<DESINVENTAR><fichas>"+
			"<TR><fechano>2011</fechano><muertos>1</muertos><afectados>20</afectados></TR>"+
			"</fichas></DESINVENTAR>")
	writeDesinventarExport(t, filepath.Join(extracted, "DI_export_ken", "zz_broken.xml"),
		"<fichas><TR><fechano>2010")
	writeDesinventarExport(t, filepath.Join(extracted, "DI_export_BAD_", "x.xml"),
		"<DESINVENTAR><fichas></fichas></DESINVENTAR>")
	require.NoError(t, os.WriteFile(filepath.Join(extracted, "readme.txt"), []byte("x"), 0o644))

	pc, handler := newTestContext(t, domain.SourceDesinventar, dir)
	records, err := Desinventar{}.Parse(context.Background(), pc)
	require.NoError(t, err)

	byKey := recordsByKey(records)
	require.Len(t, byKey, 2)

	arm2010 := byKey["ARM/2010"]
	assert.Equal(t, 2.0, arm2010.Fields[domain.FieldDesinventarEvents])
	assert.Equal(t, 5.0, arm2010.Fields[domain.FieldDesinventarDeaths])
	assert.Equal(t, 100.0, arm2010.Fields[domain.FieldDesinventarAffected])
	assert.Equal(t, 5.0, arm2010.Fields[domain.FieldDesinventarHousesDestroyed])
	assert.Equal(t, 10.0, arm2010.Fields[domain.FieldDesinventarHousesDamaged])

	ken2011 := byKey["KEN/2011"]
	assert.Equal(t, 1.0, ken2011.Fields[domain.FieldDesinventarEvents])
	assert.Equal(t, 1.0, ken2011.Fields[domain.FieldDesinventarDeaths])
	assert.Equal(t, 20.0, ken2011.Fields[domain.FieldDesinventarAffected])
	assert.Equal(t, 0.0, ken2011.Fields[domain.FieldDesinventarHousesDestroyed])

	assert.True(t, handler.ContainsMessage("skipping malformed loss export"))
	assert.Equal(t, 6, pc.Counters.RowsRead)
	assert.Equal(t, 2, pc.Counters.RecordsEmitted)
	assert.Equal(t, 2, pc.Counters.ParseFailures)
	assert.Equal(t, 1, pc.Counters.YearsOutOfRange)
	assert.Equal(t, 1, pc.Counters.Quarantined)
}

func TestDesinventar_Parse_MissingExtractedDir(t *testing.T) {
	pc, _ := newTestContext(t, domain.SourceDesinventar, t.TempDir())
	_, err := Desinventar{}.Parse(context.Background(), pc)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
