package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := NewNotFound("person", "sarahchen")
	want := "NOT_FOUND: person not found: sarahchen"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := NewInvalidRequest("bad input")
	if !Is(err, ErrInvalidRequest) {
		t.Error("Is(ErrInvalidRequest) = false, want true")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is(ErrNotFound) = true, want false")
	}
	if Is(fmt.Errorf("plain"), ErrInvalidRequest) {
		t.Error("Is should be false for non-TendError")
	}
}

func TestStorageFailedDetails(t *testing.T) {
	cause := fmt.Errorf("database is locked")
	err := NewStorageFailed("sarahchen", "auto_create", cause)

	if err.Details["key"] != "sarahchen" {
		t.Errorf("key detail = %v, want sarahchen", err.Details["key"])
	}
	if err.Details["disposition"] != "auto_create" {
		t.Errorf("disposition detail = %v, want auto_create", err.Details["disposition"])
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should unwrap to the cause")
	}
}

func TestInternalNilCause(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want 'internal error'", err.Message)
	}
}
