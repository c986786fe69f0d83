package term

import (
	"regexp"
	"slices"
	"strings"
)

// Required sheet columns.
const (
	ColumnLabel  = "Label"
	ColumnID     = "ID"
	ColumnParent = "Parent"
)

// Row is one sheet row keyed by column header.
type Row map[string]string

var relationHeader = regexp.MustCompile(`^REL '([^']+)'`)

// RelationColumn reports the relation label encoded in a column header such
// as "REL 'part of' [OBO:BFO_0000050]".
func RelationColumn(header string) (string, bool) {
	m := relationHeader.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsCurationStatusColumn reports whether header holds the curation status.
// Sheets spell this column in several ways, so any header containing
// "curation status" in any case matches.
func IsCurationStatusColumn(header string) bool {
	return strings.Contains(strings.ToLower(header), "curation status")
}

// SplitList splits a ;-separated cell, trimming entries and dropping empty
// ones.
func SplitList(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseRows turns sheet rows into current terms.
//
// Blank rows and the ROBOT template row (whose ID cell reads "ID") are skipped
// silently. Rows with a label but no id are skipped with [IssueInvalidRow].
// Relation and curation status columns are read in sorted header-name order,
// not sheet column order, so the result is deterministic regardless of map
// iteration.
func ParseRows(rows []Row) ([]Term, []Issue) {
	var (
		terms  []Term
		issues []Issue
	)
	for i, row := range rows {
		id := strings.TrimSpace(row[ColumnID])
		label := strings.TrimSpace(row[ColumnLabel])
		switch {
		case id == "" && label == "":
			continue
		case id == ColumnID:
			continue
		case id == "":
			issues = append(issues, Issue{Kind: IssueInvalidRow, Term: label, Reference: "missing " + ColumnID, Row: i + 1})
			continue
		case label == "":
			label = id
		}

		t := Term{ID: id, Label: label}
		if parent := strings.TrimSpace(row[ColumnParent]); parent != "" {
			t.Parents = []ParentRef{{Label: parent}}
		}

		headers := make([]string, 0, len(row))
		for h := range row {
			headers = append(headers, h)
		}
		slices.Sort(headers)
		for _, h := range headers {
			if IsCurationStatusColumn(h) && t.CurationStatus == "" {
				t.CurationStatus = strings.TrimSpace(row[h])
				continue
			}
			rel, ok := RelationColumn(h)
			if !ok {
				continue
			}
			for _, target := range SplitList(row[h]) {
				t.Relations = append(t.Relations, RelationRef{RelationLabel: rel, TargetLabel: target})
			}
		}
		terms = append(terms, t)
	}
	return terms, issues
}
