// Package classify maps declared MIME types onto the pipeline's file
// format categories.
package classify

import (
	"strings"

	"github.com/docuflow/invoice-extractor/constants"
)

// DetectFileType categorizes a MIME type. Pure and total: unknown types
// yield UNSUPPORTED, never a guessed category.
func DetectFileType(mimeType string) constants.FileFormat {
	mt := constants.NormalizeMIME(mimeType)
	switch {
	case mt == constants.MIMEPDF:
		return constants.PDF
	case strings.HasPrefix(mt, "image/"):
		return constants.IMAGE
	case strings.Contains(mt, "sheet"), strings.Contains(mt, "excel"):
		return constants.SPREADSHEET
	default:
		return constants.UNSUPPORTED
	}
}
