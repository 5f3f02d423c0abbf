package indexmanager

import (
	"fmt"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

// validateEntry enforces the required-field and size contract for
// indexContent (spec §4.3): id, title, content, and path are required,
// and content must not exceed maxContentLength.
func validateEntry(e *indexstore.Entry, maxContentLength int) error {
	if e == nil {
		return kferrors.InvalidArgument(kferrors.ErrCodeEmptyRequiredField, "entry must not be nil")
	}
	if e.ID == "" {
		return kferrors.InvalidArgument(kferrors.ErrCodeEmptyRequiredField, "entry id is required")
	}
	if e.Title == "" {
		return kferrors.InvalidArgument(kferrors.ErrCodeEmptyRequiredField, fmt.Sprintf("entry %s: title is required", e.ID))
	}
	if e.Content == "" {
		return kferrors.InvalidArgument(kferrors.ErrCodeEmptyRequiredField, fmt.Sprintf("entry %s: content is required", e.ID))
	}
	if e.Path == "" {
		return kferrors.InvalidArgument(kferrors.ErrCodeEmptyRequiredField, fmt.Sprintf("entry %s: path is required", e.ID))
	}
	if maxContentLength > 0 && len(e.Content) > maxContentLength {
		return kferrors.InvalidArgument(kferrors.ErrCodeEmptyRequiredField, fmt.Sprintf("entry %s: content exceeds %d bytes", e.ID, maxContentLength))
	}
	return nil
}
