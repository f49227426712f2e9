package model

import (
	"fmt"
	"strings"
)

type (
	// FieldError is a single validation or reconciliation failure.
	FieldError struct {
		// Data type the failing item belongs to (empty for session level errors)
		DataType DataType
		// Failing item id (empty for list / session level errors)
		ItemId string
		// Failing field (optional)
		Field string
		// Human readable reason
		Message string
	}

	// ErrorList is an ordered collection of FieldError handed over to the error display surface.
	ErrorList []FieldError
)

// Error implements the error interface.
func (e FieldError) Error() string {
	str := strings.Builder{}
	if e.DataType != "" {
		str.WriteString(string(e.DataType))
	}
	if e.ItemId != "" {
		str.WriteString(fmt.Sprintf("[%s]", e.ItemId))
	}
	if e.Field != "" {
		str.WriteString(fmt.Sprintf(".%s", e.Field))
	}
	if str.Len() > 0 {
		str.WriteString(": ")
	}
	str.WriteString(e.Message)

	return str.String()
}

// String implements the stringer interface.
func (l ErrorList) String() string {
	str := strings.Builder{}
	for _, e := range l {
		str.WriteString(fmt.Sprintf("- %s\n", e.Error()))
	}

	return str.String()
}

// HasErrors checks if the list is not empty.
func (l ErrorList) HasErrors() bool {
	return len(l) > 0
}

// WithItem returns a copy of the list with DataType and ItemId filled where missing.
func (l ErrorList) WithItem(dataType DataType, itemId string) ErrorList {
	if len(l) == 0 {
		return nil
	}

	out := make(ErrorList, 0, len(l))
	for _, e := range l {
		if e.DataType == "" {
			e.DataType = dataType
		}
		if e.ItemId == "" {
			e.ItemId = itemId
		}
		out = append(out, e)
	}

	return out
}

// NewFieldError creates a new FieldError for the field.
func NewFieldError(field, format string, args ...interface{}) FieldError {
	return FieldError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
