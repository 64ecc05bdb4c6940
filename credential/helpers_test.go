package credential

import (
	"errors"
	"testing"
)

const testNow uint64 = 1767225600

func mustSubject(t *testing.T, s string) Subject {
	t.Helper()
	subject, err := ParseSubject(s)
	if err != nil {
		t.Fatalf("ParseSubject(%q): %v", s, err)
	}
	return subject
}

func sampleInput(t *testing.T) CredentialInput {
	t.Helper()
	in, err := SampleAccredited(testNow)
	if err != nil {
		t.Fatalf("SampleAccredited: %v", err)
	}
	return in
}

func requireCode(t *testing.T, err error, want Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected structured *credential.Error, got %T (%v)", err, err)
	}
	if e.Code != want {
		t.Fatalf("expected code %s, got %s (%v)", want, e.Code, err)
	}
}
