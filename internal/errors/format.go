package errors

import (
	"encoding/json"
)

// jsonError is the JSON representation of an error, used by model
// export/import sidecar documents and analytics snapshots.
type jsonError struct {
	Code       string            `json:"code"`
	Kind       string            `json:"kind"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error, suitable for
// machine consumption in sidecar diagnostics.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	ee, ok := err.(*EngineError)
	if !ok {
		ee = New(ErrCodeBatchRejected, err.Error(), err)
	}

	je := jsonError{
		Code:       ee.Code,
		Kind:       string(ee.Kind),
		Message:    ee.Message,
		Category:   string(ee.Category),
		Severity:   string(ee.Severity),
		Details:    ee.Details,
		Suggestion: ee.Suggestion,
		Retryable:  ee.Retryable,
	}

	if ee.Cause != nil {
		je.Cause = ee.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog formats an error for structured logging, returning
// key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	ee, ok := err.(*EngineError)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": ee.Code,
		"error_kind": string(ee.Kind),
		"message":    ee.Message,
		"category":   string(ee.Category),
		"severity":   string(ee.Severity),
		"retryable":  ee.Retryable,
	}

	if ee.Cause != nil {
		result["cause"] = ee.Cause.Error()
	}

	if ee.Suggestion != "" {
		result["suggestion"] = ee.Suggestion
	}

	for k, v := range ee.Details {
		result["detail_"+k] = v
	}

	return result
}
