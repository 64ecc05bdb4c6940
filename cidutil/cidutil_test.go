package cidutil

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommitment_ConformanceVector(t *testing.T) {
	root := filepath.Join("..", "testdata", "conformance", "credential", "v1")
	raw, err := os.ReadFile(filepath.Join(root, "accredited_1.output.hex"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	encoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want, err := os.ReadFile(filepath.Join(root, "accredited_1.cid"))
	if err != nil {
		t.Fatalf("read cid: %v", err)
	}
	if got := CommitmentString(encoded); got != strings.TrimSpace(string(want)) {
		t.Fatalf("cid mismatch: got %s want %s", got, strings.TrimSpace(string(want)))
	}

	c, err := Parse(strings.TrimSpace(string(want)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !Matches(c, encoded) {
		t.Fatalf("Matches false for own bytes")
	}
	encoded[0] ^= 0x01
	if Matches(c, encoded) {
		t.Fatalf("Matches true for altered bytes")
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		"not-a-cid",
		// dag-pb CIDv0
		"QmdfTbBqBPQ7VNxZEYEj14VmRuZBkqFbiwReogJgS1zR1n",
	} {
		if _, err := Parse(s); err == nil {
			t.Fatalf("Parse(%q) accepted", s)
		}
	}
}
