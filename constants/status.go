package constants

// FileStatus is the canonical lifecycle state for an uploaded file.
type FileStatus string

// Stable values (these exact strings appear in API responses).
const (
	FileStatusQueued       FileStatus = "QUEUED"        // accepted, waiting for a worker
	FileStatusExtracting   FileStatus = "EXTRACTING"    // stage 1: raw text extraction
	FileStatusAIExtracting FileStatus = "AI_EXTRACTING" // stage 2: structuring service call
	FileStatusNormalizing  FileStatus = "NORMALIZING"   // stage 3: entity normalization
	FileStatusCompleted    FileStatus = "COMPLETED"     // terminal success
	FileStatusFailed       FileStatus = "FAILED"        // terminal failure
)

// Terminal reports whether no further transitions are possible.
func (s FileStatus) Terminal() bool {
	return s == FileStatusCompleted || s == FileStatusFailed
}
