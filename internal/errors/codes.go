// Package errors provides structured error handling for opskb.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (files, ingestion roots)
//   - 3XX: Storage errors
//   - 4XX: Parse and validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and ingestion I/O errors.
	CategoryIO Category = "IO"
	// CategoryStore indicates persistence-layer errors.
	CategoryStore Category = "STORE"
	// CategoryParse indicates document parsing and input validation errors.
	CategoryParse Category = "PARSE"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates an unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeRootNotDir     = "ERR_202_ROOT_NOT_DIRECTORY"
	ErrCodeIngestLocked   = "ERR_203_INGEST_LOCKED"
	ErrCodeFileUnreadable = "ERR_204_FILE_UNREADABLE"

	// Storage errors (300-399)
	ErrCodeStoreOpen  = "ERR_301_STORE_OPEN"
	ErrCodeStoreQuery = "ERR_302_STORE_QUERY"
	ErrCodeNotFound   = "ERR_303_RECORD_NOT_FOUND"

	// Parse and validation errors (400-499)
	ErrCodeInvalidInput           = "ERR_401_INVALID_INPUT"
	ErrCodeBlueprintMetadata      = "ERR_402_BLUEPRINT_METADATA"
	ErrCodeBlueprintDiscriminator = "ERR_403_BLUEPRINT_DISCRIMINATOR"
	ErrCodeBlueprintEmpty         = "ERR_404_BLUEPRINT_EMPTY"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode derives the category from the numeric range in the code.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryStore
	case '4':
		return CategoryParse
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the default severity from the code.
// Parse failures abort the call that produced them but never the process.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryInternal:
		return SeverityFatal
	default:
		return SeverityError
	}
}
