package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phylomovie/phylomovie/pkg/errors"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{FormatSVG}},
		{"svg", []string{"svg"}},
		{"svg,png,pdf", []string{"svg", "png", "pdf"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWriteFormatsSVG(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")
	image := []byte("<svg></svg>")

	written, err := writeFormats(image, base, []string{"svg"})
	if err != nil {
		t.Fatalf("writeFormats: %v", err)
	}
	if len(written) != 1 || written[0] != base+".svg" {
		t.Fatalf("written = %v", written)
	}
	raw, err := os.ReadFile(written[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "<svg></svg>" {
		t.Errorf("file content = %q", raw)
	}
}

func TestWriteFormatsUnsupported(t *testing.T) {
	_, err := writeFormats([]byte("<svg/>"), filepath.Join(t.TempDir(), "out"), []string{"gif"})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}
