package errors

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatJSON_BasicError(t *testing.T) {
	err := New(ErrCodeEntryNotFound, "entry not found", nil).
		WithDetail("id", "entry-42").
		WithSuggestion("verify the entry id")

	data, jsonErr := FormatJSON(err)
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, ErrCodeEntryNotFound, result["code"])
	assert.Equal(t, string(KindNotFound), result["kind"])
	assert.Equal(t, "entry not found", result["message"])
	assert.Equal(t, string(CategoryStorage), result["category"])
	assert.Equal(t, string(SeverityError), result["severity"])
	assert.Equal(t, "verify the entry id", result["suggestion"])

	details, ok := result["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "entry-42", details["id"])
}

func TestFormatJSON_StandardError(t *testing.T) {
	err := errors.New("generic error")

	data, jsonErr := FormatJSON(err)
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "generic error", result["message"])
}

func TestFormatJSON_NilError(t *testing.T) {
	data, err := FormatJSON(nil)

	assert.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(string(data)))
}

func TestFormatJSON_WithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := New(ErrCodeBatchRejected, "batch failed", cause)

	data, jsonErr := FormatJSON(err)
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "underlying error", result["cause"])
}

func TestFormatForLog_IncludesStructuredFields(t *testing.T) {
	err := New(ErrCodeQueryDeadlineExceeded, "deadline exceeded", nil).
		WithDetail("queryId", "q-1")

	attrs := FormatForLog(err)

	assert.Equal(t, ErrCodeQueryDeadlineExceeded, attrs["error_code"])
	assert.Equal(t, string(KindSearchTimeout), attrs["error_kind"])
	assert.Equal(t, true, attrs["retryable"])
	assert.Equal(t, "q-1", attrs["detail_queryId"])
}

func TestFormatForLog_StandardError(t *testing.T) {
	attrs := FormatForLog(errors.New("plain error"))

	assert.Equal(t, "plain error", attrs["error"])
}

func TestFormatForLog_NilError(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
}
