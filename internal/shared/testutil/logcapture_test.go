package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestLogger_CapturesRecords(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("row parsed", "iso3", "KEN", "year", 2015)
	logger.Warn("row quarantined")

	require.Equal(t, 2, handler.Count())

	records := handler.Records()
	assert.Equal(t, "row parsed", records[0].Message)
	assert.Equal(t, slog.LevelInfo, records[0].Level)
	assert.Equal(t, "KEN", records[0].Attrs["iso3"])
	assert.EqualValues(t, 2015, records[0].Attrs["year"])
	assert.Equal(t, slog.LevelWarn, records[1].Level)
}

func TestContainsMessage_MatchesSubstring(t *testing.T) {
	logger, handler := NewTestLogger(t)
	logger.Error("checksum mismatch for unified_dataset.csv")

	assert.True(t, handler.ContainsMessage("checksum mismatch"))
	assert.False(t, handler.ContainsMessage("manifest missing"))
}

func TestContainsAttr(t *testing.T) {
	logger, handler := NewTestLogger(t)
	logger.Info("stage complete", "stage", "fuse")

	assert.True(t, handler.ContainsAttr("stage", "fuse"))
	assert.False(t, handler.ContainsAttr("stage", "extract"))
	assert.False(t, handler.ContainsAttr("missing", "fuse"))
}

func TestWithAttrs_BoundAttrsSurviveCapture(t *testing.T) {
	logger, handler := NewTestLogger(t)

	// Derived loggers share the parent's sink.
	logger.With("source", "emdat").Info("extraction started")

	require.Equal(t, 1, handler.Count())
	assert.True(t, handler.ContainsAttr("source", "emdat"))
}

func TestWithGroup_QualifiesKeys(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.WithGroup("run").Info("manifest written", "id", "20260823T120000Z")

	assert.True(t, handler.ContainsAttr("run.id", "20260823T120000Z"))
	assert.False(t, handler.ContainsAttr("id", "20260823T120000Z"))
}

func TestRecords_ReturnsCopy(t *testing.T) {
	logger, handler := NewTestLogger(t)
	logger.Info("first")

	records := handler.Records()
	records[0].Message = "mutated"

	assert.Equal(t, "first", handler.Records()[0].Message)
}
