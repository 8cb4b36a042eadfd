// Package validate applies the local constraints the remote API is
// known to enforce, so bad rows fail before any network call is made.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/winback/message-service/internal/types"
)

const (
	MaxHeaderChars  = 66
	MaxBodyChars    = 144
	MaxAltTextChars = 150
)

// FieldError is a local constraint violation on a single field. It is
// per-row: it never aborts the surrounding run.
type FieldError struct {
	Field  types.TargetField
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Join renders a list of field errors the way they are stored in the
// failed-rows export.
func Join(errs []*FieldError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// MessageRow checks a row destined for message creation: message_id,
// header and body must be non-empty, and the length caps apply. All
// violations are reported, not just the first.
func MessageRow(row types.ImportRow) []*FieldError {
	var errs []*FieldError
	errs = appendRequired(errs, row, types.FieldMessageID)
	errs = appendRequired(errs, row, types.FieldHeader)
	errs = appendRequired(errs, row, types.FieldBody)

	if n := utf8.RuneCountInString(row.Value(types.FieldHeader)); n > MaxHeaderChars {
		errs = append(errs, &FieldError{
			Field:  types.FieldHeader,
			Reason: fmt.Sprintf("too long (%d chars, maximum is %d)", n, MaxHeaderChars),
		})
	}
	if n := utf8.RuneCountInString(row.Value(types.FieldBody)); n > MaxBodyChars {
		errs = append(errs, &FieldError{
			Field:  types.FieldBody,
			Reason: fmt.Sprintf("too long (%d chars, maximum is %d)", n, MaxBodyChars),
		})
	}
	if n := utf8.RuneCountInString(row.Value(types.FieldImageAltText)); n > MaxAltTextChars {
		errs = append(errs, &FieldError{
			Field:  types.FieldImageAltText,
			Reason: fmt.Sprintf("too long (%d chars, maximum is %d)", n, MaxAltTextChars),
		})
	}
	return errs
}

// DefaultsRow checks a row destined for default-message mutation:
// message_id and locale must be non-empty. Locale format is not
// constrained locally, the remote is authoritative there.
func DefaultsRow(row types.ImportRow) []*FieldError {
	var errs []*FieldError
	errs = appendRequired(errs, row, types.FieldMessageID)
	errs = appendRequired(errs, row, types.FieldLocale)
	return errs
}

// MessageFields checks directly supplied field values, for the
// single-message commands that bypass table import.
func MessageFields(header, body, altText string) []*FieldError {
	row := types.ImportRow{Values: map[types.TargetField]string{
		types.FieldMessageID:    "direct",
		types.FieldHeader:       header,
		types.FieldBody:         body,
		types.FieldImageAltText: altText,
	}}
	return MessageRow(row)
}

func appendRequired(errs []*FieldError, row types.ImportRow, f types.TargetField) []*FieldError {
	if strings.TrimSpace(row.Value(f)) == "" {
		return append(errs, &FieldError{Field: f, Reason: "required value is missing"})
	}
	return errs
}
