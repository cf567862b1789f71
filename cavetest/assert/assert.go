package assert

import (
	"testing"

	"github.com/cavelabs/cave/errors"
)

// IsErr is a convenient helper that checks if the errors are a match and
// prints out the difference if not as well as failing the assertion.
func IsErr(t testing.TB, want, got error) {
	t.Helper()

	if want == got {
		return
	}

	type comparator interface {
		Is(error) bool
	}

	if want, ok := want.(comparator); ok && want.Is(got) {
		return
	}

	t.Fatalf("want %q, got %+v", want, got)
}

// FieldError ensures that given error was created for the named attribute
// and is of the wanted kind.
func FieldError(t testing.TB, err error, fieldName string, want *errors.Error) {
	t.Helper()

	if got := errors.FieldName(err); got != fieldName {
		t.Fatalf("want error for field %q, got %q: %+v", fieldName, got, err)
	}
	if !want.Is(err) {
		t.Fatalf("want %q, got %+v", want, err)
	}
}
