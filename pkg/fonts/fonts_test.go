package fonts

import (
	"encoding/base64"
	"testing"
)

func TestRegular(t *testing.T) {
	f, err := Regular()
	if err != nil {
		t.Fatalf("Regular() error = %v", err)
	}
	again, _ := Regular()
	if f != again {
		t.Error("Regular() parsed the font twice")
	}
}

func TestRegularTTFBase64(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(RegularTTFBase64())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data) != len(RegularTTF()) {
		t.Errorf("decoded %d bytes, want %d", len(data), len(RegularTTF()))
	}
}
