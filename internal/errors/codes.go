// Package errors provides structured error handling for the retrieval
// engine.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where the numeric
// prefix groups codes by spec error kind:
//   - 1XX: InvalidQuery
//   - 2XX: InvalidArgument
//   - 3XX: NotFound
//   - 4XX: SearchTimeout
//   - 5XX: IndexCorruption
//   - 6XX: BatchError
//   - 7XX: ModelIncompatible
//   - 8XX: ResourceExhausted
package errors

// Kind is the stable error classification from the engine's error handling
// design. Callers should switch on Kind, never on message text.
type Kind string

const (
	KindInvalidQuery      Kind = "INVALID_QUERY"
	KindInvalidArgument   Kind = "INVALID_ARGUMENT"
	KindNotFound          Kind = "NOT_FOUND"
	KindSearchTimeout     Kind = "SEARCH_TIMEOUT"
	KindIndexCorruption   Kind = "INDEX_CORRUPTION"
	KindBatchError        Kind = "BATCH_ERROR"
	KindModelIncompatible Kind = "MODEL_INCOMPATIBLE"
	KindResourceExhausted Kind = "RESOURCE_EXHAUSTED"
)

// Category groups kinds for metrics and logging.
type Category string

const (
	CategoryValidation Category = "VALIDATION"
	CategoryStorage    Category = "STORAGE"
	CategoryTimeout    Category = "TIMEOUT"
	CategoryModel      Category = "MODEL"
	CategoryCapacity   Category = "CAPACITY"
)

// Severity defines error severity levels.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Error codes organized by spec error kind.
const (
	// InvalidQuery (100-199)
	ErrCodeQueryEmpty      = "ERR_101_QUERY_EMPTY"
	ErrCodeQueryTooLong    = "ERR_102_QUERY_TOO_LONG"
	ErrCodeLimitTooHigh    = "ERR_103_LIMIT_TOO_HIGH"
	ErrCodeBadBooleanSyn   = "ERR_104_BAD_BOOLEAN_SYNTAX"
	ErrCodeUnknownQueryType = "ERR_105_UNKNOWN_QUERY_TYPE"

	// InvalidArgument (200-299)
	ErrCodeInvalidReward       = "ERR_201_INVALID_REWARD"
	ErrCodeWeightsMismatch     = "ERR_202_WEIGHTS_MISMATCH"
	ErrCodeNegativeLimit       = "ERR_203_NEGATIVE_LIMIT"
	ErrCodeEmptyRequiredField  = "ERR_204_EMPTY_REQUIRED_FIELD"
	ErrCodeDimensionMismatch   = "ERR_205_DIMENSION_MISMATCH"

	// NotFound (300-399)
	ErrCodeEntryNotFound = "ERR_301_ENTRY_NOT_FOUND"
	ErrCodeArmNotFound   = "ERR_302_ARM_NOT_FOUND"

	// SearchTimeout (400-499)
	ErrCodeQueryDeadlineExceeded = "ERR_401_QUERY_DEADLINE_EXCEEDED"
	ErrCodeParallelFanoutTimeout = "ERR_402_PARALLEL_FANOUT_TIMEOUT"

	// IndexCorruption (500-599)
	ErrCodeIndexUnreadable = "ERR_501_INDEX_UNREADABLE"
	ErrCodeRowCorrupt      = "ERR_502_ROW_CORRUPT"

	// BatchError (600-699)
	ErrCodeBatchRejected = "ERR_601_BATCH_REJECTED"
	ErrCodeBatchPartial  = "ERR_602_BATCH_PARTIAL_FAILURE"

	// ModelIncompatible (700-799)
	ErrCodeBanditModelShape = "ERR_701_BANDIT_MODEL_SHAPE"
	ErrCodeRankerModelShape = "ERR_702_RANKER_MODEL_SHAPE"

	// ResourceExhausted (800-899)
	ErrCodeCacheFull  = "ERR_801_CACHE_FULL"
	ErrCodeMemoryCap  = "ERR_802_MEMORY_CAP_EXCEEDED"
)

// categoryFromCode extracts the category from an error code's numeric
// prefix (e.g. "101" from "ERR_101_QUERY_EMPTY").
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryValidation
	}
	switch code[4] {
	case '1':
		return CategoryValidation
	case '2':
		return CategoryValidation
	case '3':
		return CategoryStorage
	case '4':
		return CategoryTimeout
	case '5':
		return CategoryStorage
	case '6':
		return CategoryStorage
	case '7':
		return CategoryModel
	case '8':
		return CategoryCapacity
	default:
		return CategoryValidation
	}
}

// kindFromCode maps a code's numeric prefix to its spec error kind.
func kindFromCode(code string) Kind {
	if len(code) < 7 {
		return KindInvalidQuery
	}
	switch code[4] {
	case '1':
		return KindInvalidQuery
	case '2':
		return KindInvalidArgument
	case '3':
		return KindNotFound
	case '4':
		return KindSearchTimeout
	case '5':
		return KindIndexCorruption
	case '6':
		return KindBatchError
	case '7':
		return KindModelIncompatible
	case '8':
		return KindResourceExhausted
	default:
		return KindInvalidQuery
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexUnreadable, ErrCodeRowCorrupt:
		return SeverityFatal
	}
	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode reports whether an error code represents a transient
// condition the batch-level retry policy should retry.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeQueryDeadlineExceeded, ErrCodeParallelFanoutTimeout,
		ErrCodeBatchRejected, ErrCodeBatchPartial, ErrCodeCacheFull:
		return true
	default:
		return false
	}
}
