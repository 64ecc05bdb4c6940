package credential

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestCredentialInputJSON_RoundTrip(t *testing.T) {
	in := sampleInput(t)
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"credential_type":2`) {
		t.Fatalf("unexpected JSON: %s", b)
	}
	var got CredentialInput
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(EncodeInput(got), EncodeInput(in)) {
		t.Fatalf("JSON round trip changed the input")
	}
}

func TestCredentialInputJSON_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad subject": `{"subject":"0x12","credential_type":1}`,
		"bad hex":     `{"subject":"0x1234567890123456789012345678901234567890","credential_data":"0xzz"}`,
		"odd hex":     `{"subject":"0x1234567890123456789012345678901234567890","signature":"0x123"}`,
	}
	for name, doc := range cases {
		var in CredentialInput
		if err := json.Unmarshal([]byte(doc), &in); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestPublicOutputJSON(t *testing.T) {
	out, err := Validate(sampleInput(t))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc["credential_hash"] != out.HashHex() {
		t.Fatalf("credential_hash = %v", doc["credential_hash"])
	}
	if doc["subject"] != out.Subject.String() {
		t.Fatalf("subject = %v", doc["subject"])
	}
}

func TestSubject_ParseAndString(t *testing.T) {
	s := mustSubject(t, "1234567890123456789012345678901234567890")
	if s != mustSubject(t, "0x1234567890123456789012345678901234567890") {
		t.Fatalf("0x prefix must be optional")
	}
	if !strings.EqualFold(s.String(), "0x1234567890123456789012345678901234567890") {
		t.Fatalf("String = %s", s.String())
	}
	if _, err := ParseSubject("0x1234"); err == nil {
		t.Fatalf("short subject accepted")
	}
}
