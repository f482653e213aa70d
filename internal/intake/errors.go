package intake

import (
	"errors"
	"fmt"
)

// RejectCode categorizes why an event was rejected.
type RejectCode string

const (
	// CodeDuplicateID indicates a share collided with an existing recipe id.
	CodeDuplicateID RejectCode = "DUPLICATE_ID"

	// CodeDuplicateName indicates a share collided with an existing recipe
	// name under case-insensitive comparison.
	CodeDuplicateName RejectCode = "DUPLICATE_NAME"

	// CodeMissingBuildID indicates a vote arrived without an installation
	// identifier.
	CodeMissingBuildID RejectCode = "MISSING_BUILD_ID"

	// CodeAlreadyVoted indicates the installation already voted for the
	// target recipe.
	CodeAlreadyVoted RejectCode = "ALREADY_VOTED"

	// CodeNotFound indicates the vote targeted an unknown recipe.
	CodeNotFound RejectCode = "NOT_FOUND"
)

// RejectError is a terminal, user-facing rejection of one event.
//
// Rejections are local: no store mutation has happened when one is
// returned, and nothing is persisted upstream. They are distinct from
// infrastructure errors (storage write failures), which propagate as
// plain errors.
type RejectError struct {
	Code    RejectCode
	Message string
}

// Error implements the error interface.
func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsReject extracts a RejectError from err, unwrapping as needed.
func AsReject(err error) (*RejectError, bool) {
	var re *RejectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func reject(code RejectCode, format string, args ...any) *RejectError {
	return &RejectError{Code: code, Message: fmt.Sprintf(format, args...)}
}
