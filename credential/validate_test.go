package credential

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"
)

func TestValidate_EndToEnd(t *testing.T) {
	in := sampleInput(t)
	out, err := Validate(in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var pre []byte
	pre = append(pre, in.Subject[:]...)
	pre = append(pre, 0, 0, 0, 2)
	pre = append(pre, in.CredentialData...)
	pre = append(pre, in.IssuerPubKey...)
	wantHash := sha256.Sum256(pre)

	want := PublicOutput{
		Subject:        in.Subject,
		CredentialType: 2,
		CredentialHash: wantHash,
		IssuedAt:       testNow - 86400,
		ExpiresAt:      testNow + 31536000,
	}
	if out != want {
		t.Fatalf("output mismatch:\n got %+v\nwant %+v", out, want)
	}
	if len(out.Encode()) != EncodedOutputSize {
		t.Fatalf("encoded size %d", len(out.Encode()))
	}
}

func TestValidate_CheckOrder(t *testing.T) {
	// Every field is broken; the abort reason follows the fixed check order.
	in := sampleInput(t)
	in.CredentialType = 0
	in.IssuedAt = 0
	in.Signature = nil
	in.CredentialData = nil
	_, err := Validate(in)
	requireCode(t, err, CodeInvalidCredentialType)

	in.CredentialType = TypeInstitutional
	_, err = Validate(in)
	requireCode(t, err, CodeInvalidIssuance)

	in.IssuedAt = testNow
	_, err = Validate(in)
	requireCode(t, err, CodeInvalidSignature)

	in.Signature = make([]byte, 64)
	_, err = Validate(in)
	requireCode(t, err, CodeMalformedCredential)

	in.CredentialData = EncodeHeader(1, 2, nil)
	_, err = Validate(in)
	requireCode(t, err, CodeInsufficientClaims)
}

func TestValidate_SignatureBoundaries(t *testing.T) {
	in := sampleInput(t)

	in.Signature = make([]byte, 63)
	_, err := Validate(in)
	requireCode(t, err, CodeInvalidSignature)

	in.Signature = make([]byte, 64)
	if _, err := Validate(in); err != nil {
		t.Fatalf("64-byte signature with 33-byte key: %v", err)
	}

	in.Signature = make([]byte, 65)
	in.IssuerPubKey = bytes.Repeat([]byte{0x04}, 65)
	if _, err := Validate(in); err != nil {
		t.Fatalf("65-byte signature with 65-byte key: %v", err)
	}

	for _, n := range []int{0, 32, 34, 64, 66} {
		in.IssuerPubKey = make([]byte, n)
		_, err := Validate(in)
		requireCode(t, err, CodeInvalidPublicKey)
	}
}

func TestValidate_SignatureBeforeClaims(t *testing.T) {
	in := sampleInput(t)
	in.CredentialData = EncodeHeader(9, 0, nil)
	in.IssuerPubKey = nil
	_, err := Validate(in)
	requireCode(t, err, CodeInvalidPublicKey)
}

func TestValidate_NoOutputOnFailure(t *testing.T) {
	in := sampleInput(t)
	in.CurrentTime = in.ExpiresAt + 1
	out, err := Validate(in)
	requireCode(t, err, CodeExpired)
	if out != (PublicOutput{}) {
		t.Fatalf("failed run must not leak output: %+v", out)
	}

	b, err := Validator{}.Run(EncodeInput(in))
	requireCode(t, err, CodeExpired)
	if b != nil {
		t.Fatalf("failed run must not commit bytes")
	}
}

func TestValidator_CustomVerifier(t *testing.T) {
	errReject := errors.New("rejected by test verifier")
	var gotMessage []byte
	v := Validator{Verifier: VerifierFunc(func(message, _, _ []byte) error {
		gotMessage = message
		return WrapError(RuleSignatureInvalid, "test", errReject)
	})}

	in := sampleInput(t)
	_, err := v.Validate(in)
	requireCode(t, err, CodeInvalidSignature)
	if !errors.Is(err, errReject) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if !bytes.Equal(gotMessage, in.CredentialData) {
		t.Fatalf("verifier must receive credential data as the signed message")
	}
}

func TestValidator_Run(t *testing.T) {
	in := sampleInput(t)
	got, err := Validator{}.Run(EncodeInput(in))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, _ := Validate(in)
	if !bytes.Equal(got, out.Encode()) {
		t.Fatalf("Run bytes differ from Validate+Encode")
	}

	_, err = Validator{}.Run([]byte{1, 2, 3})
	requireCode(t, err, CodeMalformedRecord)
}

func TestValidator_Diagnose(t *testing.T) {
	in := sampleInput(t)
	in.IssuedAt = 0
	in.CredentialData = EncodeHeader(1, 0, nil)
	errs := Validator{}.Diagnose(in)
	if len(errs) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(errs), errs)
	}
	requireCode(t, errs[0], CodeInvalidIssuance)
	requireCode(t, errs[1], CodeInsufficientClaims)
}

func TestValidate_InputNotMutated(t *testing.T) {
	in := sampleInput(t)
	data := append([]byte(nil), in.CredentialData...)
	if _, err := Validate(in); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !bytes.Equal(in.CredentialData, data) {
		t.Fatalf("Validate mutated credential data")
	}
}
