package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/docuflow/invoice-extractor/internal/llm"
)

func TestClassifyServiceErrors(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCategory
	}{
		{401, AuthError},
		{403, AuthError},
		{413, PayloadTooLarge},
		{429, RateLimited},
		{500, UnknownError},
	}
	for _, tc := range cases {
		err := &llm.ServiceError{StatusCode: tc.status, Detail: "upstream said no"}
		ce := Classify(fmt.Errorf("structuring call: %w", err))
		if ce.Category != tc.want {
			t.Errorf("status %d: category = %s, want %s", tc.status, ce.Category, tc.want)
		}
	}
}

func TestClassifyPipelineErrors(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorCategory
	}{
		{ErrEmptyExtraction, ExtractionEmpty},
		{ErrUnsupportedType, UnsupportedType},
		{&InvalidDocumentError{Violations: []string{"invoice: missing"}}, ValidationError},
		{&url.Error{Op: "Post", URL: "https://api.example.com", Err: errors.New("connection refused")}, NetworkError},
		{errors.New("something odd"), UnknownError},
	}
	for _, tc := range cases {
		if ce := Classify(tc.err); ce.Category != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.err, ce.Category, tc.want)
		}
	}
}

func TestClassifyMessagesAreStable(t *testing.T) {
	a := Classify(&llm.ServiceError{StatusCode: 429, Detail: "detail one"})
	b := Classify(&llm.ServiceError{StatusCode: 429, Detail: "a completely different detail"})
	if a.Message != b.Message {
		t.Errorf("messages differ for same category: %q vs %q", a.Message, b.Message)
	}
	if strings.Contains(a.Message, "detail one") {
		t.Errorf("raw detail leaked into user message: %q", a.Message)
	}
}

func TestClassifyUnknownKeepsDetail(t *testing.T) {
	ce := Classify(errors.New("disk exploded"))
	if !strings.HasPrefix(ce.Message, "Extraction failed:") {
		t.Errorf("message = %q", ce.Message)
	}
	if !strings.Contains(ce.Message, "disk exploded") {
		t.Errorf("unknown error should carry detail: %q", ce.Message)
	}
}

func TestClassifyUnwrap(t *testing.T) {
	cause := ErrEmptyExtraction
	ce := Classify(cause)
	if !errors.Is(ce, ErrEmptyExtraction) {
		t.Error("classified error does not unwrap to its cause")
	}
}
