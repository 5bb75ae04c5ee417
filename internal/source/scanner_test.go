package source

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2024.csv"), "x")
	writeFile(t, filepath.Join(dir, "bank", "jan.OFX"), "x")
	writeFile(t, filepath.Join(dir, "bank", "feb.qfx"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, ".git", "hidden.csv"), "x")

	files, err := ScanDir(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name+":"+string(f.Format))
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"2024.csv:csv",
		filepath.Join("bank", "feb.qfx") + ":ofx",
		filepath.Join("bank", "jan.OFX") + ":ofx",
	}, names)
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParsePath(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ledger.csv")
	writeFile(t, csvPath, "period,flow_type,category,amount\n2024-01,revenue,sales,10\n,,,\n")

	res := ParsePath(csvPath)
	require.NoError(t, res.Err)
	assert.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Skipped)

	res = ParsePath(filepath.Join(dir, "ledger.xlsx"))
	assert.ErrorIs(t, res.Err, ErrInvalidFile)

	res = ParsePath(filepath.Join(dir, "missing.csv"))
	assert.Error(t, res.Err)
}
