package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("link photo: %w", Conflict("Tag already associated with photo"))

	if !errors.Is(err, ErrConflict) {
		t.Fatalf("wrapped conflict not matched")
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatalf("conflict matched forbidden")
	}
	if KindOf(err) != KindConflict {
		t.Fatalf("unexpected kind %v", KindOf(err))
	}
	if MessageOf(err, "x") != "Tag already associated with photo" {
		t.Fatalf("unexpected message %q", MessageOf(err, "x"))
	}
}

func TestStorageHidesCause(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := Storage("find photo", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	if MessageOf(err, "Internal Server Error") != "Internal Server Error" {
		t.Fatalf("storage message leaked")
	}
	if KindOf(errors.New("plain")) != KindStorage {
		t.Fatalf("unclassified errors must be storage faults")
	}
}
