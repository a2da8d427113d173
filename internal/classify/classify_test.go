package classify

import (
	"testing"

	"github.com/docuflow/invoice-extractor/constants"
)

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		mime string
		want constants.FileFormat
	}{
		{"application/pdf", constants.PDF},
		{"Application/PDF", constants.PDF},
		{"application/pdf; charset=binary", constants.PDF},
		{"image/png", constants.IMAGE},
		{"image/jpeg", constants.IMAGE},
		{"image/jpg", constants.IMAGE},
		{"image/webp", constants.IMAGE},
		{"application/vnd.ms-excel", constants.SPREADSHEET},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", constants.SPREADSHEET},
		{"text/plain", constants.UNSUPPORTED},
		{"application/json", constants.UNSUPPORTED},
		{"", constants.UNSUPPORTED},
		{"video/mp4", constants.UNSUPPORTED},
	}
	for _, tt := range tests {
		if got := DetectFileType(tt.mime); got != tt.want {
			t.Errorf("DetectFileType(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestDetectFileTypeIdempotent(t *testing.T) {
	// Same input must always yield the same category.
	for i := 0; i < 3; i++ {
		if got := DetectFileType("application/pdf"); got != constants.PDF {
			t.Fatalf("run %d: DetectFileType changed result: %q", i, got)
		}
	}
}
