package errors

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Output formats and visualization types accepted by the CLI and API.
var (
	Formats  = []string{"svg", "png", "pdf", "json", "dot"}
	VizTypes = []string{"tree", "nodelink"}
	// SheetExtensions are the spreadsheet file types ReadRows understands.
	SheetExtensions = []string{".csv", ".tsv", ".json"}
)

// maxLabelLength bounds labels and ids taken from requests.
const maxLabelLength = 512

// ValidateLabel rejects empty or oversized labels and control characters.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains control characters")
		}
	}
	return nil
}

// termIDRegex matches compact ids such as "CL:0000540" or "GO_0008150".
var termIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.-]*[:_][A-Za-z0-9_.-]+$`)

// ValidateTermID checks that id is a compact term identifier.
func ValidateTermID(id string) error {
	if err := ValidateLabel(id); err != nil {
		return New(ErrCodeInvalidInput, "term id: %s", UserMessage(err))
	}
	if !termIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid term id: %q", id)
	}
	return nil
}

// ValidateFormat checks an output format.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateVizType checks a visualization type.
func ValidateVizType(viz string) error {
	if !slices.Contains(VizTypes, viz) {
		return New(ErrCodeInvalidVizType, "unsupported visualization %q (want one of %s)", viz, strings.Join(VizTypes, ", "))
	}
	return nil
}

// ValidateSheetPath checks that path names a spreadsheet file ReadRows can
// parse. It does not touch the file system.
func ValidateSheetPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "sheet path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "sheet path contains a null byte")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SheetExtensions, ext) {
		return New(ErrCodeInvalidSheet, "unsupported sheet type %q (want one of %s)", ext, strings.Join(SheetExtensions, ", "))
	}
	return nil
}

// ValidateURL checks that rawURL uses http or https.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
