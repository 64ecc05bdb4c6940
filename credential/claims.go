package credential

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the width of the credential data header (version + claim count).
const HeaderSize = 8

// SupportedVersion is the only credential data version accepted.
const SupportedVersion uint32 = 1

// Header is the decoded prefix of credential data.
type Header struct {
	Version    uint32
	ClaimCount uint32
	// Payload aliases the bytes after the header.
	Payload []byte
}

// ParseHeader splits credential data into its header and claim payload.
// It does not check the version.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, NewError(RuleDataTooShort, fmt.Sprintf("credential data is %d bytes, need at least %d", len(data), HeaderSize))
	}
	return Header{
		Version:    binary.BigEndian.Uint32(data[0:4]),
		ClaimCount: binary.BigEndian.Uint32(data[4:8]),
		Payload:    data[HeaderSize:],
	}, nil
}

// EncodeHeader returns version || claimCount || payload.
func EncodeHeader(version, claimCount uint32, payload []byte) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(out[0:4], version)
	binary.BigEndian.PutUint32(out[4:8], claimCount)
	return append(out, payload...)
}

// MinimumClaims returns the minimum claim count required for a credential type.
func MinimumClaims(credentialType uint32) uint32 {
	switch credentialType {
	case TypeAccredited, TypeQualified:
		return 2
	case TypeInstitutional:
		return 3
	default:
		// KYC, AML and custom types.
		return 1
	}
}

// ValidateClaims checks the credential data header against the claims policy
// for credentialType.
func ValidateClaims(data []byte, credentialType uint32) error {
	h, err := ParseHeader(data)
	if err != nil {
		return err
	}
	if h.Version != SupportedVersion {
		return NewError(RuleVersion, fmt.Sprintf("unsupported credential data version %d", h.Version))
	}
	if want := MinimumClaims(credentialType); h.ClaimCount < want {
		return NewError(RuleClaimCount, fmt.Sprintf("credential type %d requires %d claims, got %d", credentialType, want, h.ClaimCount))
	}
	return nil
}
