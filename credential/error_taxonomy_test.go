package credential

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorTaxonomy_RuleTable(t *testing.T) {
	for _, id := range RuleIDs() {
		info, ok := LookupRule(id)
		if !ok {
			t.Fatalf("RuleIDs returned unregistered %s", id)
		}
		if info.ID != id {
			t.Fatalf("rule %s registered under %s", info.ID, id)
		}
		if !strings.HasPrefix(id, "CRED-") {
			t.Fatalf("rule %s missing CRED- prefix", id)
		}
		err := NewError(id, "msg")
		if RuleID(err) != id || CodeOf(err) != info.Code || !IsKind(err, info.Kind) {
			t.Fatalf("NewError(%s) does not carry its registration", id)
		}
	}
}

func TestErrorTaxonomy_UnknownRuleIsInternal(t *testing.T) {
	err := NewError("CRED-NOPE-999", "typo")
	if !IsKind(err, KindInternal) || !IsCode(err, CodeInternal) {
		t.Fatalf("unknown rule must be internal, got %v", err)
	}
}

func TestErrorTaxonomy_Wrapping(t *testing.T) {
	cause := errors.New("low level")
	err := WrapError(RuleSignatureInvalid, "bad", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost")
	}
	outer := errors.Join(errors.New("context"), err)
	if CodeOf(outer) != CodeInvalidSignature {
		t.Fatalf("CodeOf must see through wrapping")
	}
	if CodeOf(errors.New("plain")) != "" || RuleID(nil) != "" {
		t.Fatalf("unstructured errors have no code")
	}
	var nilErr *Error
	if nilErr.Error() != "<nil>" || nilErr.Unwrap() != nil {
		t.Fatalf("nil receiver handling")
	}
}

func TestErrorTaxonomy_Kinds(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{ValidateCredentialType(0), KindInput},
		{ValidateTemporal(0, 0, 0), KindTemporal},
		{CheckSignatureStructure(nil, nil), KindSignature},
		{ValidateClaims(nil, 1), KindClaims},
	}
	for _, tc := range cases {
		if !IsKind(tc.err, tc.kind) {
			t.Fatalf("%v: expected kind %s", tc.err, tc.kind)
		}
	}
}
