package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
)

const sheetCSV = "\ufeffID,Label,Parent,REL 'part of',Curation status\n" +
	"ID,LABEL,SC %,SC 'part of' some %,\n" +
	"A:1,Alpha,,,ready\n" +
	"A:2,Beta,Alpha,\"Alpha; Gamma\"\n"

func TestReadRowsCSV(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(sheetCSV), FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "A:1", rows[1][term.ColumnID])
	assert.Equal(t, "ready", rows[1]["Curation status"])
	assert.Equal(t, "Alpha; Gamma", rows[2]["REL 'part of'"])
	assert.Equal(t, "", rows[2]["Curation status"], "short rows are padded")
}

func TestReadRowsFeedsParseRows(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(sheetCSV), FormatCSV)
	require.NoError(t, err)

	terms, issues := term.ParseRows(rows)

	assert.Empty(t, issues)
	require.Len(t, terms, 2)
	assert.Equal(t, "Beta", terms[1].Label)
	assert.Equal(t, []term.ParentRef{{Label: "Alpha"}}, terms[1].Parents)
	assert.Len(t, terms[1].Relations, 2)
}

func TestReadRowsTSV(t *testing.T) {
	in := "ID\tLabel\tParent\nA:1\tAlpha\t\nA:2\tBeta, with comma\tAlpha\n"
	rows, err := ReadRows(strings.NewReader(in), FormatTSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Beta, with comma", rows[1][term.ColumnLabel])
}

func TestReadRowsJSON(t *testing.T) {
	in := `[{"ID": "A:1", "Label": "Alpha", "Parent": null, "Rank": 3, "Flag": true},
	        {"ID": "A:2", "Label": "Beta", "REL 'part of'": ["Alpha", "Gamma"]}]`
	rows, err := ReadRows(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "", rows[0]["Parent"])
	assert.Equal(t, "3", rows[0]["Rank"])
	assert.Equal(t, "true", rows[0]["Flag"])
	assert.Equal(t, "Alpha; Gamma", rows[1]["REL 'part of'"])
}

func TestReadRowsErrors(t *testing.T) {
	_, err := ReadRows(strings.NewReader("x"), "xlsx")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSheet))

	_, err = ReadRows(strings.NewReader(`{"not": "an array"}`), FormatJSON)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSheet))

	rows, err := ReadRows(strings.NewReader(""), FormatCSV)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRowsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.csv")
	require.NoError(t, os.WriteFile(path, []byte(sheetCSV), 0o644))

	rows, err := ReadRowsFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = ReadRowsFile(filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = ReadRowsFile(filepath.Join(dir, "terms.xlsx"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSheet))
}
