package render

import (
	"context"
	"errors"
	"testing"
)

func TestToPNGWithoutConverter(t *testing.T) {
	if Available() {
		t.Skip("rsvg-convert installed")
	}
	_, err := ToPNG(context.Background(), []byte("<svg/>"), 2)
	if !errors.Is(err, ErrConverterMissing) {
		t.Errorf("ToPNG() error = %v, want ErrConverterMissing", err)
	}
}

func TestToPDF(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)
	out, err := ToPDF(context.Background(), svg)
	if err != nil {
		t.Fatalf("ToPDF() error = %v", err)
	}
	if len(out) < 4 || string(out[:4]) != "%PDF" {
		t.Errorf("output does not look like a PDF: %q", out[:min(8, len(out))])
	}
}
