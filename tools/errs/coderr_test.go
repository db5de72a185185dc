package errs

import (
	"strings"
	"testing"
)

func TestWithDetailDoesNotMutate(t *testing.T) {
	e := ErrArgs.WithDetail("field missing")
	if ErrArgs.Detail != "" {
		t.Fatalf("predefined error mutated: %q", ErrArgs.Detail)
	}
	if e.Detail != "field missing" {
		t.Fatalf("detail not set: %q", e.Detail)
	}
	e2 := e.WithDetail("more")
	if e2.Detail != "field missing, more" {
		t.Fatalf("details not joined: %q", e2.Detail)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := ErrRecordNotFound.WrapMsg("user not found", "id", "u1")
	if !ErrRecordNotFound.Is(err) {
		t.Fatalf("wrapped error should match by code")
	}
	if ErrArgs.Is(err) {
		t.Fatalf("different code must not match")
	}
	if ErrArgs.Is(New("plain")) {
		t.Fatalf("plain error must not match")
	}
}

func TestWrapMsgKeyValues(t *testing.T) {
	err := ErrDatabase.WrapMsg("insert failed", "coll", "users")
	want := "insert failed coll=users"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Fatalf("want %q in %q", want, got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
	if WrapMsg(nil, "ctx") != nil {
		t.Fatalf("WrapMsg(nil) must be nil")
	}
}
