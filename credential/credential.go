// Package credential implements the credential validation and commitment pipeline.
//
// A run takes one private CredentialInput, checks its type, validity window,
// issuer signature and claims header, and produces a PublicOutput whose
// 72-byte canonical encoding is the only artifact visible to a verifier.
// Every check is deterministic and side-effect free; any failure aborts the
// run before a hash or output exists.
package credential

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SubjectSize is the fixed width of a subject identity.
const SubjectSize = 20

// HashSize is the width of a credential hash.
const HashSize = 32

// Subject is the identity (an address) a credential pertains to.
type Subject [SubjectSize]byte

// ParseSubject parses a 20-byte hex address, with or without 0x prefix.
func ParseSubject(s string) (Subject, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return Subject{}, fmt.Errorf("invalid subject %q: want 20-byte hex address", s)
	}
	return Subject(common.HexToAddress(s)), nil
}

// String returns the EIP-55 checksummed form.
func (s Subject) String() string {
	return common.Address(s).Hex()
}

// Credential types known to the claims policy.
const (
	TypeKYC           uint32 = 1
	TypeAccredited    uint32 = 2
	TypeQualified     uint32 = 3
	TypeInstitutional uint32 = 4
	TypeAML           uint32 = 5
)

// TypeName returns a human label for a credential type.
func TypeName(t uint32) string {
	switch t {
	case TypeKYC:
		return "KYC"
	case TypeAccredited:
		return "Accredited Investor"
	case TypeQualified:
		return "Qualified Purchaser"
	case TypeInstitutional:
		return "Institutional"
	case TypeAML:
		return "AML"
	case 0:
		return "invalid"
	default:
		return "custom"
	}
}

// CredentialInput is the private witness for one validation run.
type CredentialInput struct {
	Subject        Subject
	CredentialType uint32
	// CredentialData is version (u32 BE) || claim_count (u32 BE) || claim payload.
	CredentialData []byte
	Signature      []byte
	IssuerPubKey   []byte
	IssuedAt       uint64
	// ExpiresAt of 0 means the credential never expires.
	ExpiresAt   uint64
	CurrentTime uint64
}

// PublicOutput is the minimal derived data safe to reveal outside the private computation.
type PublicOutput struct {
	Subject        Subject
	CredentialType uint32
	CredentialHash [HashSize]byte
	IssuedAt       uint64
	ExpiresAt      uint64
}

// HashHex returns the credential hash as 0x-prefixed hex.
func (o PublicOutput) HashHex() string {
	return "0x" + hex.EncodeToString(o.CredentialHash[:])
}

// Assemble builds the public output. It performs no validation.
func Assemble(subject Subject, credentialType uint32, hash [HashSize]byte, issuedAt, expiresAt uint64) PublicOutput {
	return PublicOutput{
		Subject:        subject,
		CredentialType: credentialType,
		CredentialHash: hash,
		IssuedAt:       issuedAt,
		ExpiresAt:      expiresAt,
	}
}
