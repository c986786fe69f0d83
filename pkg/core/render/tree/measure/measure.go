// Package measure implements text measurement for the tree layout.
//
// [Font] measures with real glyph advances of the embedded label font and is
// what the CLI and API use. [Approx] estimates from the character count and
// needs no font data, which makes it handy in tests and for quick previews.
package measure

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/termtree/pkg/fonts"
)

// DefaultCharWidth is the average glyph advance relative to the font size.
const DefaultCharWidth = 0.55

// Approx estimates text width as runes * fontSize * CharWidth.
type Approx struct {
	CharWidth float64
}

// MeasureText implements layout.Measurer.
func (a Approx) MeasureText(text string, fontSize float64) float64 {
	cw := a.CharWidth
	if cw == 0 {
		cw = DefaultCharWidth
	}
	return float64(len([]rune(text))) * fontSize * cw
}

// Font measures text with glyph advances from an OpenType font. Faces are
// created lazily per font size and cached; Font is safe for concurrent use.
type Font struct {
	font  *opentype.Font
	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewFont returns a measurer for the embedded label font.
func NewFont() (*Font, error) {
	f, err := fonts.Regular()
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	return NewFontFrom(f), nil
}

// NewFontFrom returns a measurer for an already parsed font.
func NewFontFrom(f *opentype.Font) *Font {
	return &Font{font: f, faces: make(map[float64]font.Face)}
}

// MeasureText implements layout.Measurer. If a face cannot be created for
// the size, it falls back to the [Approx] estimate.
func (m *Font) MeasureText(text string, fontSize float64) float64 {
	face, err := m.face(fontSize)
	if err != nil {
		return Approx{}.MeasureText(text, fontSize)
	}
	return fixedToFloat(font.MeasureString(face, text))
}

func (m *Font) face(size float64) (font.Face, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}

// Close releases every cached face.
func (m *Font) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for size, f := range m.faces {
		_ = f.Close()
		delete(m.faces, size)
	}
	return nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
