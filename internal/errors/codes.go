// Package errors provides structured error handling for docindex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (document, lock file)
//   - 3XX: Network errors (embedding service, vector index)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates document and lock-file I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates embedding-service and index errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates an unrecoverable error, the run must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199). All fatal, detected before any stage runs.
	ErrCodeMissingCredentials = "ERR_101_MISSING_CREDENTIALS"
	ErrCodeMissingIndexName   = "ERR_102_MISSING_INDEX_NAME"
	ErrCodeConfigInvalid      = "ERR_103_CONFIG_INVALID"

	// IO errors (200-299).
	ErrCodeDocumentNotFound   = "ERR_201_DOCUMENT_NOT_FOUND"
	ErrCodeDocumentUnreadable = "ERR_202_DOCUMENT_UNREADABLE"
	ErrCodeRunLockHeld        = "ERR_203_RUN_LOCK_HELD"

	// Network errors (300-399).
	ErrCodeEmbeddingFailed = "ERR_301_EMBEDDING_FAILED"
	ErrCodeUpsertFailed    = "ERR_302_UPSERT_FAILED"
	// ErrCodeClearFailed is the one recovered error in the pipeline: a
	// failed index clear is logged and the run continues, relying on
	// upsert overwriting stale records by id.
	ErrCodeClearFailed   = "ERR_303_CLEAR_FAILED"
	ErrCodeIndexNotFound = "ERR_304_INDEX_NOT_FOUND"

	// Validation errors (400-499).
	ErrCodeDimensionMismatch = "ERR_401_DIMENSION_MISMATCH"
	ErrCodeBatchMisaligned   = "ERR_402_BATCH_MISALIGNED"

	// Internal errors (500-599).
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract the numeric portion (e.g., "101" from "ERR_101_MISSING_CREDENTIALS").
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeClearFailed:
		// Recovered locally: the run proceeds after logging.
		return SeverityWarning
	case ErrCodeMissingCredentials, ErrCodeMissingIndexName, ErrCodeConfigInvalid,
		ErrCodeDocumentNotFound, ErrCodeDocumentUnreadable,
		ErrCodeEmbeddingFailed, ErrCodeUpsertFailed:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// isRecoveredCode reports whether an error code represents a locally
// recovered failure that must not abort the run.
func isRecoveredCode(code string) bool {
	return code == ErrCodeClearFailed
}
