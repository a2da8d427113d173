package pipeline

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/docuflow/invoice-extractor/internal/llm"
)

// ErrorCategory is the stable failure taxonomy. Values appear in logs
// and API responses; do not rename.
type ErrorCategory string

const (
	AuthError       ErrorCategory = "AUTH_ERROR"
	PayloadTooLarge ErrorCategory = "PAYLOAD_TOO_LARGE"
	RateLimited     ErrorCategory = "RATE_LIMITED"
	NetworkError    ErrorCategory = "NETWORK_ERROR"
	ValidationError ErrorCategory = "VALIDATION_ERROR"
	ExtractionEmpty ErrorCategory = "EXTRACTION_EMPTY"
	UnsupportedType ErrorCategory = "UNSUPPORTED_TYPE"
	UnknownError    ErrorCategory = "UNKNOWN_ERROR"
)

// Failure reasons raised inside the pipeline itself.
var (
	ErrEmptyExtraction = errors.New("no text extracted from document")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// InvalidDocumentError aborts a file when the structuring service's
// output is missing required top-level objects. Per-field violations
// never produce this error; they are resolved by sanitization.
type InvalidDocumentError struct {
	Violations []string
}

func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("document failed validation: %s", strings.Join(e.Violations, "; "))
}

// ClassifiedError pairs a category and a stable user-facing message
// with the raw cause, which is kept for logs only.
type ClassifiedError struct {
	Category ErrorCategory
	Message  string
	Cause    error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// Classify maps a raw stage failure to its category and message. The
// message strings are stable and safe to show to end users; the raw
// error text never leads, only trails as detail for UnknownError.
func Classify(err error) *ClassifiedError {
	ce := &ClassifiedError{Cause: err}

	var svcErr *llm.ServiceError
	switch {
	case errors.Is(err, ErrUnsupportedType):
		ce.Category = UnsupportedType
		ce.Message = "Unsupported file type. Please upload a PDF, image, or spreadsheet."
	case errors.Is(err, ErrEmptyExtraction):
		ce.Category = ExtractionEmpty
		ce.Message = "No text could be extracted from this document. The file may be empty or unreadable."
	case isInvalidDocument(err):
		ce.Category = ValidationError
		ce.Message = "AI generated invalid data. This usually happens with complex invoices. Please try again or manually enter the data."
	case errors.As(err, &svcErr):
		switch svcErr.StatusCode {
		case 401, 403:
			ce.Category = AuthError
			ce.Message = "Invalid API key. Please check your configuration."
		case 413:
			ce.Category = PayloadTooLarge
			ce.Message = "Document is too large. Please try a shorter document or extract data manually."
		case 429:
			ce.Category = RateLimited
			ce.Message = "Too many requests. Please wait a moment and try again."
		default:
			ce.Category = UnknownError
			ce.Message = fmt.Sprintf("Extraction failed: %v", err)
		}
	case isNetworkError(err):
		ce.Category = NetworkError
		ce.Message = "Network error. Please check your internet connection and try again."
	default:
		ce.Category = UnknownError
		ce.Message = fmt.Sprintf("Extraction failed: %v", err)
	}
	return ce
}

func isInvalidDocument(err error) bool {
	var ie *InvalidDocumentError
	return errors.As(err, &ie)
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
