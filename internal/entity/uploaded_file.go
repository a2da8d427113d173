package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/docuflow/invoice-extractor/constants"
)

// UploadedFile tracks one submitted file through the pipeline. Mutated
// only by the orchestrator (via the store), never by normalization.
type UploadedFile struct {
	ID                  uuid.UUID            `json:"id"`
	Name                string               `json:"name"`
	MIMEType            string               `json:"type"`
	Size                int64                `json:"size"`
	Status              constants.FileStatus `json:"status"`
	Progress            int                  `json:"progress"`
	Error               *string              `json:"error"`
	ExtractedInvoiceIDs []uuid.UUID          `json:"extractedInvoiceIds"`
	UploadedAt          time.Time            `json:"uploadedAt"`
}
