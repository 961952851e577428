package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	c := filepath.Join(dir, "c.csv")
	require.NoError(t, os.WriteFile(a, []byte("iso3,year\nKEN,2005\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("iso3,year\nKEN,2005\n"), 0644))
	require.NoError(t, os.WriteFile(c, []byte("iso3,year\nKEN,2006\n"), 0644))

	digestA, err := Digest(a)
	require.NoError(t, err)
	digestB, err := Digest(b)
	require.NoError(t, err)
	digestC, err := Digest(c)
	require.NoError(t, err)

	assert.Len(t, digestA, 64)
	assert.Equal(t, digestA, digestB)
	assert.NotEqual(t, digestA, digestC)
}

func TestDigestMissingFile(t *testing.T) {
	_, err := Digest(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
