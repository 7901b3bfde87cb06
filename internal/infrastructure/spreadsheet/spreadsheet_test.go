package spreadsheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_MissingFileIsEmpty(t *testing.T) {
	table, err := Read(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.NoError(t, err)

	assert.Empty(t, table.Header)
	assert.Empty(t, table.Rows)
}

func TestWriteRead_RoundTripPreservesOrderAndValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "table.xlsx")

	in := &Table{
		Header: []string{"ID", "Title", "RecentPlace"},
		Rows: []Row{
			{"ID": "DOC-1", "Title": "First", "RecentPlace": "admin"},
			{"ID": "DOC-2", "Title": "", "RecentPlace": "forensic"},
			{"ID": "DOC-3", "Title": "0042", "RecentPlace": ""},
		},
	}
	require.NoError(t, Write(path, in))

	out, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, in.Header, out.Header)
	assert.Equal(t, in.Rows, out.Rows)
}

func TestWrite_ReplacesAllRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.xlsx")

	require.NoError(t, Write(path, &Table{
		Header: []string{"A"},
		Rows:   []Row{{"A": "1"}, {"A": "2"}, {"A": "3"}},
	}))
	require.NoError(t, Write(path, &Table{
		Header: []string{"A"},
		Rows:   []Row{{"A": "only"}},
	}))

	out, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []Row{{"A": "only"}}, out.Rows)
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(filepath.Join(dir, "t.xlsx"), &Table{Header: []string{"A"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t.xlsx", entries[0].Name())
}

func TestAppend_CreatesAndExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xlsx")
	header := []string{"Action", "Place"}

	require.NoError(t, Append(path, header, Row{"Action": "Submit", "Place": "admin"}))
	require.NoError(t, Append(path, header, Row{"Action": "Receive", "Place": "forensic"}))
	require.NoError(t, Append(path, []string{"Action", "Place", "Note"}, Row{"Action": "Forward", "Place": "account", "Note": "urgent"}))

	out, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Action", "Place", "Note"}, out.Header)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, "Submit", out.Rows[0]["Action"])
	assert.Equal(t, "", out.Rows[0]["Note"])
	assert.Equal(t, "Receive", out.Rows[1]["Action"])
	assert.Equal(t, "urgent", out.Rows[2]["Note"])
}

func TestRead_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o600))

	_, err := Read(path)
	require.Error(t, err)
}
