package constants

import "strings"

// FileFormat is the classified category of an uploaded file.
type FileFormat string

const (
	PDF         FileFormat = "PDF"
	IMAGE       FileFormat = "IMAGE"
	SPREADSHEET FileFormat = "SPREADSHEET"
	UNSUPPORTED FileFormat = ""
)

// Allowed MIME types for upload (enforced at the API boundary).
const (
	MIMEPDF         = "application/pdf"
	MIMEPNG         = "image/png"
	MIMEJPEG        = "image/jpeg"
	MIMEJPG         = "image/jpg"
	MIMEExcelLegacy = "application/vnd.ms-excel"
	MIMEExcelModern = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AllowedMIMETypes holds the MIME types accepted for ingestion.
var AllowedMIMETypes = map[string]struct{}{
	MIMEPDF:         {},
	MIMEPNG:         {},
	MIMEJPEG:        {},
	MIMEJPG:         {},
	MIMEExcelLegacy: {},
	MIMEExcelModern: {},
}

// MaxFileSize is the maximum accepted upload size (10 MiB).
const MaxFileSize = 10 << 20

// NormalizeMIME lowercases and strips any parameters from a MIME type
// ("Application/PDF; charset=binary" -> "application/pdf").
func NormalizeMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
