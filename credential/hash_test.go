package credential

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func TestComputeCredentialHash_Deterministic(t *testing.T) {
	in := sampleInput(t)
	first := ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, in.IssuerPubKey)
	for i := 0; i < 100; i++ {
		got := ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, in.IssuerPubKey)
		if got != first {
			t.Fatalf("hash changed on run %d", i)
		}
	}
}

func TestComputeCredentialHash_Layout(t *testing.T) {
	in := sampleInput(t)
	var buf []byte
	buf = append(buf, in.Subject[:]...)
	buf = binary.BigEndian.AppendUint32(buf, in.CredentialType)
	buf = append(buf, in.CredentialData...)
	buf = append(buf, in.IssuerPubKey...)
	want := sha256.Sum256(buf)

	got := ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, in.IssuerPubKey)
	if got != want {
		t.Fatalf("hash mismatch: got %x want %x", got, want)
	}
}

func TestComputeCredentialHash_Avalanche(t *testing.T) {
	in := sampleInput(t)
	base := ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, in.IssuerPubKey)
	for i := range in.CredentialData {
		for bit := 0; bit < 8; bit++ {
			data := append([]byte(nil), in.CredentialData...)
			data[i] ^= 1 << bit
			if ComputeCredentialHash(in.Subject, in.CredentialType, data, in.IssuerPubKey) == base {
				t.Fatalf("flipping byte %d bit %d did not change the hash", i, bit)
			}
		}
	}
}

func TestComputeCredentialHash_FieldsBound(t *testing.T) {
	in := sampleInput(t)
	base := ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, in.IssuerPubKey)

	subject := in.Subject
	subject[19] ^= 0x01
	if ComputeCredentialHash(subject, in.CredentialType, in.CredentialData, in.IssuerPubKey) == base {
		t.Fatalf("subject not bound")
	}
	if ComputeCredentialHash(in.Subject, in.CredentialType+1, in.CredentialData, in.IssuerPubKey) == base {
		t.Fatalf("credential type not bound")
	}
	pub := append([]byte(nil), in.IssuerPubKey...)
	pub[0] = 0x03
	if ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, pub) == base {
		t.Fatalf("issuer key not bound")
	}
}
