package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
)

// Sheet formats understood by [ReadRows].
const (
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
	FormatJSON = "json"
)

// FormatOf returns the sheet format implied by a file extension.
func FormatOf(path string) (string, error) {
	if err := errors.ValidateSheetPath(path); err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."), nil
}

// ReadRowsFile reads a spreadsheet file, choosing the format by extension.
func ReadRowsFile(path string) ([]term.Row, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sheet %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRows(f, format)
}

// ReadRows decodes spreadsheet rows. CSV and TSV input needs a header row;
// short rows are padded with empty cells and surplus cells are dropped. JSON
// input is an array of objects whose values are rendered as strings.
func ReadRows(r io.Reader, format string) ([]term.Row, error) {
	switch format {
	case FormatCSV:
		return readDelimited(r, ',')
	case FormatTSV:
		return readDelimited(r, '\t')
	case FormatJSON:
		return readJSONRows(r)
	default:
		return nil, errors.New(errors.ErrCodeInvalidSheet, "unsupported sheet format %q", format)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readDelimited(r io.Reader, comma rune) ([]term.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSheet, err, "parse sheet")
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	rows := make([]term.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(term.Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readJSONRows(r io.Reader) ([]term.Row, error) {
	var raw []map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSheet, err, "parse sheet")
	}
	rows := make([]term.Row, 0, len(raw))
	for _, obj := range raw {
		row := make(term.Row, len(obj))
		for k, v := range obj {
			row[strings.TrimSpace(k)] = cell(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = cell(p)
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(v)
	}
}
