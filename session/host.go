package session

import (
	"fmt"

	"github.com/itiky/edit-session/model"
)

type (
	// Host owns the authoritative base dataset and reacts to session commits.
	Host interface {
		// Re-analyse the base dataset; preserveErrors keeps the errors of a failed apply visible
		AnalyseData(preserveErrors bool) error
		// Refresh views depending on the base dataset
		RefreshViews()
		// Advance the authoritative dataset version after a successful commit.
		// Base list versions are advanced by the UpdateSet itself.
		IncrementVersion()
		// Errors collected by the last analysis
		Errors() model.ErrorList
	}

	// ErrorSink receives errors collected by ApplyChanges (UI error panel).
	ErrorSink interface {
		SetErrors(errs model.ErrorList)
	}

	// Listener is notified when the session edit state may have changed.
	Listener func(state model.EditState)

	// PrepareError is a reconciliation failure of a single UpdateEntry.
	PrepareError struct {
		DataType model.DataType
		Err      error
	}
)

// Error implements the error interface.
func (e PrepareError) Error() string {
	return fmt.Sprintf("entry (%s): prepare: %v", e.DataType, e.Err)
}

// Unwrap returns the underlying error.
func (e PrepareError) Unwrap() error {
	return e.Err
}

// FieldError converts the failure into an error list entry.
func (e PrepareError) FieldError() model.FieldError {
	return model.FieldError{
		DataType: e.DataType,
		Message:  e.Err.Error(),
	}
}
