package credential

import (
	"encoding/binary"
	"fmt"
)

// MaxFieldSize caps each variable-length field of an input record.
const MaxFieldSize = 1 << 20

const recordFixedSize = SubjectSize + 4 + 8 + 8 + 8

// EncodeInput returns the binary input record for in:
//
//	subject (20) || credential_type (u32 BE) || issued_at (u64 BE) || expires_at (u64 BE) ||
//	current_time (u64 BE) || len (u32 BE) || credential_data || len || signature || len || issuer_pubkey
//
// This is the transport form of a single run's private witness.
func EncodeInput(in CredentialInput) []byte {
	size := recordFixedSize + 12 + len(in.CredentialData) + len(in.Signature) + len(in.IssuerPubKey)
	out := make([]byte, 0, size)
	out = append(out, in.Subject[:]...)
	out = binary.BigEndian.AppendUint32(out, in.CredentialType)
	out = binary.BigEndian.AppendUint64(out, in.IssuedAt)
	out = binary.BigEndian.AppendUint64(out, in.ExpiresAt)
	out = binary.BigEndian.AppendUint64(out, in.CurrentTime)
	for _, field := range [][]byte{in.CredentialData, in.Signature, in.IssuerPubKey} {
		out = binary.BigEndian.AppendUint32(out, uint32(len(field)))
		out = append(out, field...)
	}
	return out
}

// DecodeInput parses a binary input record. Truncated records, oversized
// fields and trailing bytes are rejected. Byte fields are copied.
func DecodeInput(b []byte) (CredentialInput, error) {
	var in CredentialInput
	if len(b) < recordFixedSize {
		return in, NewError(RuleRecordTruncated, fmt.Sprintf("input record is %d bytes, need at least %d", len(b), recordFixedSize))
	}
	off := copy(in.Subject[:], b[:SubjectSize])
	in.CredentialType = binary.BigEndian.Uint32(b[off:])
	off += 4
	in.IssuedAt = binary.BigEndian.Uint64(b[off:])
	off += 8
	in.ExpiresAt = binary.BigEndian.Uint64(b[off:])
	off += 8
	in.CurrentTime = binary.BigEndian.Uint64(b[off:])
	off += 8

	names := []string{"credential_data", "signature", "issuer_pubkey"}
	fields := make([][]byte, len(names))
	for i, name := range names {
		if len(b)-off < 4 {
			return CredentialInput{}, NewError(RuleRecordTruncated, fmt.Sprintf("input record truncated before %s length", name))
		}
		n := binary.BigEndian.Uint32(b[off:])
		off += 4
		if n > MaxFieldSize {
			return CredentialInput{}, NewError(RuleRecordOversized, fmt.Sprintf("%s is %d bytes, limit %d", name, n, MaxFieldSize))
		}
		if uint64(len(b)-off) < uint64(n) {
			return CredentialInput{}, NewError(RuleRecordTruncated, fmt.Sprintf("input record truncated inside %s", name))
		}
		fields[i] = append([]byte(nil), b[off:off+int(n)]...)
		off += int(n)
	}
	if off != len(b) {
		return CredentialInput{}, NewError(RuleRecordTrailing, fmt.Sprintf("%d trailing bytes after input record", len(b)-off))
	}
	in.CredentialData, in.Signature, in.IssuerPubKey = fields[0], fields[1], fields[2]
	return in, nil
}
