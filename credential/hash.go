package credential

import (
	"crypto/sha256"
	"encoding/binary"
)

// ComputeCredentialHash returns
//
//	SHA-256(subject || credentialType (u32 BE) || credentialData || issuerPubKey)
//
// Field order and encoding are part of the commitment contract.
func ComputeCredentialHash(subject Subject, credentialType uint32, credentialData, issuerPubKey []byte) [HashSize]byte {
	var typ [4]byte
	binary.BigEndian.PutUint32(typ[:], credentialType)

	h := sha256.New()
	_, _ = h.Write(subject[:])
	_, _ = h.Write(typ[:])
	_, _ = h.Write(credentialData)
	_, _ = h.Write(issuerPubKey)

	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}
