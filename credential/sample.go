package credential

import (
	"bytes"
	"fmt"
	"math"
)

const (
	sampleIssuedAgo = 86400
	sampleValidFor  = 365 * 86400
)

// SampleSubject is the subject of the SampleAccredited scenario.
var SampleSubject = Subject{
	0x12, 0x34, 0x56, 0x78, 0x90, 0x12, 0x34, 0x56, 0x78, 0x90,
	0x12, 0x34, 0x56, 0x78, 0x90, 0x12, 0x34, 0x56, 0x78, 0x90,
}

// SampleAccredited returns the accredited-investor scenario anchored at now:
// issued a day earlier, valid for a year, two 32-byte claims, a 64-byte zero
// signature and a 33-byte key. The conformance vectors are generated from it.
func SampleAccredited(now uint64) (CredentialInput, error) {
	if now < sampleIssuedAgo || now > math.MaxUint64-sampleValidFor {
		return CredentialInput{}, fmt.Errorf("sample time %d out of range [%d, %d]", now, uint64(sampleIssuedAgo), uint64(math.MaxUint64-sampleValidFor))
	}
	payload := append(bytes.Repeat([]byte{0x00}, 32), bytes.Repeat([]byte{0x01}, 32)...)
	return CredentialInput{
		Subject:        SampleSubject,
		CredentialType: TypeAccredited,
		CredentialData: EncodeHeader(1, 2, payload),
		Signature:      make([]byte, MinSignatureSize),
		IssuerPubKey:   bytes.Repeat([]byte{0x02}, CompressedPubKeySize),
		IssuedAt:       now - sampleIssuedAgo,
		ExpiresAt:      now + sampleValidFor,
		CurrentTime:    now,
	}, nil
}
