package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineError_Unwrap_PreservesOriginalError(t *testing.T) {
	originalErr := errors.New("original error")

	engErr := New(ErrCodeBatchRejected, "batch rejected", originalErr)

	require.NotNil(t, engErr)
	assert.Equal(t, originalErr, errors.Unwrap(engErr))
	assert.True(t, errors.Is(engErr, originalErr))
}

func TestEngineError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "query error",
			code:     ErrCodeQueryEmpty,
			message:  "query must not be empty",
			expected: "[ERR_101_QUERY_EMPTY] query must not be empty",
		},
		{
			name:     "not found error",
			code:     ErrCodeEntryNotFound,
			message:  "entry not found",
			expected: "[ERR_301_ENTRY_NOT_FOUND] entry not found",
		},
		{
			name:     "timeout error",
			code:     ErrCodeQueryDeadlineExceeded,
			message:  "deadline exceeded",
			expected: "[ERR_401_QUERY_DEADLINE_EXCEEDED] deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestEngineError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeEntryNotFound, "entry A not found", nil)
	err2 := New(ErrCodeEntryNotFound, "entry B not found", nil)

	assert.True(t, errors.Is(err1, err2))
}

func TestEngineError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeEntryNotFound, "entry not found", nil)
	err2 := New(ErrCodeQueryEmpty, "query empty", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestEngineError_WithDetails_AddsContext(t *testing.T) {
	err := New(ErrCodeEntryNotFound, "entry not found", nil)

	err = err.WithDetail("id", "entry-123")
	err = err.WithDetail("store", "primary")

	assert.Equal(t, "entry-123", err.Details["id"])
	assert.Equal(t, "primary", err.Details["store"])
}

func TestEngineError_WithSuggestion_AddsSuggestion(t *testing.T) {
	err := New(ErrCodeQueryDeadlineExceeded, "deadline exceeded", nil)

	err = err.WithSuggestion("retry with a longer timeout")

	assert.Equal(t, "retry with a longer timeout", err.Suggestion)
}

func TestEngineError_KindFromCode(t *testing.T) {
	tests := []struct {
		code     string
		wantKind Kind
	}{
		{ErrCodeQueryEmpty, KindInvalidQuery},
		{ErrCodeUnknownQueryType, KindInvalidQuery},
		{ErrCodeInvalidReward, KindInvalidArgument},
		{ErrCodeWeightsMismatch, KindInvalidArgument},
		{ErrCodeEntryNotFound, KindNotFound},
		{ErrCodeArmNotFound, KindNotFound},
		{ErrCodeQueryDeadlineExceeded, KindSearchTimeout},
		{ErrCodeParallelFanoutTimeout, KindSearchTimeout},
		{ErrCodeIndexUnreadable, KindIndexCorruption},
		{ErrCodeBatchRejected, KindBatchError},
		{ErrCodeBanditModelShape, KindModelIncompatible},
		{ErrCodeCacheFull, KindResourceExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantKind, err.Kind)
		})
	}
}

func TestEngineError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeQueryEmpty, CategoryValidation},
		{ErrCodeInvalidReward, CategoryValidation},
		{ErrCodeEntryNotFound, CategoryStorage},
		{ErrCodeQueryDeadlineExceeded, CategoryTimeout},
		{ErrCodeIndexUnreadable, CategoryStorage},
		{ErrCodeBanditModelShape, CategoryModel},
		{ErrCodeCacheFull, CategoryCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestEngineError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeIndexUnreadable, SeverityFatal},
		{ErrCodeRowCorrupt, SeverityFatal},
		{ErrCodeEntryNotFound, SeverityError},
		{ErrCodeQueryDeadlineExceeded, SeverityWarning},
		{ErrCodeCacheFull, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestEngineError_RetryableFromCode(t *testing.T) {
	tests := []struct {
		code          string
		wantRetryable bool
	}{
		{ErrCodeQueryDeadlineExceeded, true},
		{ErrCodeParallelFanoutTimeout, true},
		{ErrCodeBatchRejected, true},
		{ErrCodeCacheFull, true},
		{ErrCodeEntryNotFound, false},
		{ErrCodeQueryEmpty, false},
		{ErrCodeIndexUnreadable, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
		})
	}
}

func TestWrap_CreatesEngineErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	engErr := Wrap(ErrCodeBatchRejected, originalErr)

	require.NotNil(t, engErr)
	assert.Equal(t, ErrCodeBatchRejected, engErr.Code)
	assert.Equal(t, "something went wrong", engErr.Message)
	assert.Equal(t, originalErr, engErr.Cause)
}

func TestIsRetryable_ChecksRetryableFlag(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "retryable engine error",
			err:      New(ErrCodeQueryDeadlineExceeded, "timeout", nil),
			expected: true,
		},
		{
			name:     "non-retryable engine error",
			err:      New(ErrCodeEntryNotFound, "not found", nil),
			expected: false,
		},
		{
			name:     "wrapped retryable error",
			err:      Wrap(ErrCodeQueryDeadlineExceeded, errors.New("wrapped")),
			expected: true,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

func TestIsFatal_ChecksFatalSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "fatal error",
			err:      New(ErrCodeIndexUnreadable, "index unreadable", nil),
			expected: true,
		},
		{
			name:     "row corrupt error",
			err:      New(ErrCodeRowCorrupt, "row corrupt", nil),
			expected: true,
		},
		{
			name:     "non-fatal error",
			err:      New(ErrCodeEntryNotFound, "not found", nil),
			expected: false,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFatal(tt.err))
		})
	}
}
