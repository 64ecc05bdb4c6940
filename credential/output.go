package credential

import (
	"encoding/binary"
	"fmt"
)

// EncodedOutputSize is the width of the canonical public output encoding.
const EncodedOutputSize = SubjectSize + 4 + HashSize + 8 + 8

// Encode returns the canonical 72-byte encoding:
//
//	subject (20) || credential_type (u32 LE) || credential_hash (32) || issued_at (u64 LE) || expires_at (u64 LE)
//
// No padding, no length prefixes. Verifiers consume these bytes as-is.
func (o PublicOutput) Encode() []byte {
	out := make([]byte, EncodedOutputSize)
	off := 0
	off += copy(out[off:], o.Subject[:])
	binary.LittleEndian.PutUint32(out[off:], o.CredentialType)
	off += 4
	off += copy(out[off:], o.CredentialHash[:])
	binary.LittleEndian.PutUint64(out[off:], o.IssuedAt)
	off += 8
	binary.LittleEndian.PutUint64(out[off:], o.ExpiresAt)
	return out
}

// MarshalBinary implements encoding.BinaryMarshaler with the canonical encoding.
func (o PublicOutput) MarshalBinary() ([]byte, error) {
	return o.Encode(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (o *PublicOutput) UnmarshalBinary(b []byte) error {
	out, err := DecodePublicOutput(b)
	if err != nil {
		return err
	}
	*o = out
	return nil
}

// DecodePublicOutput parses the canonical encoding. The input must be exactly
// EncodedOutputSize bytes.
func DecodePublicOutput(b []byte) (PublicOutput, error) {
	if len(b) != EncodedOutputSize {
		return PublicOutput{}, NewError(RuleOutputLength, fmt.Sprintf("public output is %d bytes, want %d", len(b), EncodedOutputSize))
	}
	var o PublicOutput
	off := 0
	off += copy(o.Subject[:], b[off:off+SubjectSize])
	o.CredentialType = binary.LittleEndian.Uint32(b[off:])
	off += 4
	off += copy(o.CredentialHash[:], b[off:off+HashSize])
	o.IssuedAt = binary.LittleEndian.Uint64(b[off:])
	off += 8
	o.ExpiresAt = binary.LittleEndian.Uint64(b[off:])
	return o, nil
}
