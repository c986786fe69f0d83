// Package fonts provides the label font shared by text measurement and the
// SVG sink.
//
// Labels are set in Go Regular, which ships with golang.org/x/image. Using
// the same font file for measuring and for the embedded @font-face keeps
// wrapped lines inside their boxes in every browser.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name under which the font is embedded.
const FontFamily = "Go Regular"

// FallbackFontFamily lists fallbacks for viewers that ignore embedded fonts.
const FallbackFontFamily = `'Go Regular', 'DejaVu Sans', Verdana, sans-serif`

// RegularTTF returns the TTF font data.
func RegularTTF() []byte { return goregular.TTF }

var (
	ttfBase64     string
	ttfBase64Once sync.Once

	parsed     *opentype.Font
	parsedErr  error
	parsedOnce sync.Once
)

// RegularTTFBase64 returns the TTF data as a base64 string for data URLs.
// The result is cached after first computation.
func RegularTTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}

// Regular returns the parsed font. It is parsed once and shared.
func Regular() (*opentype.Font, error) {
	parsedOnce.Do(func() {
		parsed, parsedErr = opentype.Parse(goregular.TTF)
	})
	return parsed, parsedErr
}
