package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a queried row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotOwner is returned when a delete matched no row owned by the
	// caller. The handler maps it to 403.
	ErrNotOwner = errors.New("not allowed")

	// ErrForeignKey is returned when an insert references a missing row.
	ErrForeignKey = errors.New("referenced record does not exist")

	// ErrFieldTooLong is returned when a value exceeds the store's size limit.
	ErrFieldTooLong = errors.New("field value too long")
)

// DuplicateFieldError reports a uniqueness violation tagged with the user
// field that caused it. Field is "email", "username", or empty when the
// violated constraint could not be attributed to a known column.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	if e.Field == "" {
		return "duplicate value"
	}
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// classifyErr maps a sqlite driver error to one of the typed store errors.
// Driver inspection happens only here; callers match on the returned types
// with errors.As/errors.Is and never look at SQL messages themselves.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}

	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return err
	}

	switch serr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &DuplicateFieldError{Field: uniqueField(serr.Error())}
	case sqlite3.ErrConstraintForeignKey:
		return ErrForeignKey
	}

	if serr.Code == sqlite3.ErrTooBig {
		return ErrFieldTooLong
	}

	return err
}

// uniqueField attributes a unique-constraint message to a user-facing field.
// SQLite reports the violated column as "<table>.<column>".
func uniqueField(msg string) string {
	switch {
	case strings.Contains(msg, "users.email"):
		return "email"
	case strings.Contains(msg, "users.name"):
		return "username"
	}
	return ""
}
