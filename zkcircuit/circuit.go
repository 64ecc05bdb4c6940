// Package zkcircuit expresses the credential policy as a groth16 circuit over BN254.
//
// The public inputs are the fields of the 72-byte public output plus the
// evaluation time. The circuit recomputes the credential hash with SHA-256
// over subject, type, credential data and issuer key, so the type and claims
// checks run against the same bytes the hash commits to. A verifier holding
// the output bytes, the time and a proof learns that the committed credential
// met the policy at that time. Signature checking stays outside the circuit.
package zkcircuit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/std/selector"

	"xdao.co/zkcred/credential"
)

// MaxDataSize is the largest credential data the circuit can hash.
const MaxDataSize = 128

// MaxPubKeySize is the widest issuer key the circuit accepts.
const MaxPubKeySize = credential.UncompressedPubKeySize

// prefixSize covers subject || type.
const prefixSize = credential.SubjectSize + 4

// ErrTooLarge reports an input whose credential data or key does not fit the circuit.
var ErrTooLarge = errors.New("zkcircuit: input exceeds circuit limits")

// PolicyCircuit mirrors the validator's type, temporal and claims checks and
// binds them to the credential hash.
type PolicyCircuit struct {
	Subject        frontend.Variable `gnark:",public"`
	CredentialType frontend.Variable `gnark:",public"`
	// HashHi and HashLo are the big-endian upper and lower 16 bytes of the credential hash.
	HashHi      frontend.Variable `gnark:",public"`
	HashLo      frontend.Variable `gnark:",public"`
	IssuedAt    frontend.Variable `gnark:",public"`
	ExpiresAt   frontend.Variable `gnark:",public"`
	CurrentTime frontend.Variable `gnark:",public"`

	// Data holds the credential data zero-padded to MaxDataSize.
	Data    [MaxDataSize]frontend.Variable
	DataLen frontend.Variable
	// PubKey holds the issuer key zero-padded to MaxPubKeySize.
	PubKey    [MaxPubKeySize]frontend.Variable
	PubKeyLen frontend.Variable
}

func (c *PolicyCircuit) Define(api frontend.API) error {
	bapi, err := uints.NewBytes(api)
	if err != nil {
		return err
	}

	api.ToBinary(c.IssuedAt, 64)
	api.ToBinary(c.ExpiresAt, 64)
	api.ToBinary(c.CurrentTime, 64)

	// Key width is 33 or 65.
	api.AssertIsEqual(api.Mul(
		api.Sub(c.PubKeyLen, credential.CompressedPubKeySize),
		api.Sub(c.PubKeyLen, credential.UncompressedPubKeySize),
	), 0)

	// One-hot DataLen; also bounds it to [HeaderSize, MaxDataSize].
	atLen := selector.Decoder(api, MaxDataSize+1, c.DataLen)
	for d := 0; d < credential.HeaderSize; d++ {
		api.AssertIsEqual(atLen[d], 0)
	}

	msg := make([]uints.U8, 0, prefixSize+MaxDataSize+MaxPubKeySize)
	msg = append(msg, beBytes(api, bapi, c.Subject, credential.SubjectSize)...)
	msg = append(msg, beBytes(api, bapi, c.CredentialType, 4)...)

	// inData[i] is 1 while i < DataLen.
	inData := make([]frontend.Variable, MaxDataSize)
	var tail frontend.Variable = 0
	for i := MaxDataSize - 1; i >= 0; i-- {
		tail = api.Add(tail, atLen[i+1])
		inData[i] = tail
	}
	// The key starts right after the data, so byte i of the tail region is
	// PubKey[i-DataLen].
	for i := 0; i < MaxDataSize+MaxPubKeySize; i++ {
		var b frontend.Variable = 0
		if i < MaxDataSize {
			b = api.Mul(inData[i], c.Data[i])
		}
		for d := max(0, i-MaxPubKeySize+1); d <= min(i, MaxDataSize); d++ {
			b = api.Add(b, api.Mul(atLen[d], c.PubKey[i-d]))
		}
		msg = append(msg, bapi.ValueOf(b))
	}

	h, err := sha2.New(api, hash.WithMinimalLength(prefixSize+credential.HeaderSize+credential.CompressedPubKeySize))
	if err != nil {
		return err
	}
	h.Write(msg)
	digest := h.FixedLengthSum(api.Add(prefixSize, c.DataLen, c.PubKeyLen))
	api.AssertIsEqual(packBE(api, bapi, digest[:16]), c.HashHi)
	api.AssertIsEqual(packBE(api, bapi, digest[16:]), c.HashLo)

	api.AssertIsDifferent(c.CredentialType, 0)

	api.AssertIsDifferent(c.IssuedAt, 0)
	api.AssertIsLessOrEqual(c.IssuedAt, c.CurrentTime)
	deadline := api.Select(api.IsZero(c.ExpiresAt), c.CurrentTime, c.ExpiresAt)
	api.AssertIsLessOrEqual(c.CurrentTime, deadline)

	// DataLen >= HeaderSize, so the header sits inside the hashed data.
	version := packBE(api, bapi, msg[prefixSize:prefixSize+4])
	claimCount := packBE(api, bapi, msg[prefixSize+4:prefixSize+credential.HeaderSize])
	api.AssertIsEqual(version, credential.SupportedVersion)
	isAccredited := api.IsZero(api.Sub(c.CredentialType, credential.TypeAccredited))
	isQualified := api.IsZero(api.Sub(c.CredentialType, credential.TypeQualified))
	isInstitutional := api.IsZero(api.Sub(c.CredentialType, credential.TypeInstitutional))
	minimum := api.Add(1, isAccredited, isQualified, api.Mul(2, isInstitutional))
	api.AssertIsLessOrEqual(minimum, claimCount)
	return nil
}

// beBytes range checks v to n bytes and returns them most significant first.
func beBytes(api frontend.API, bapi *uints.Bytes, v frontend.Variable, n int) []uints.U8 {
	bits := api.ToBinary(v, 8*n)
	out := make([]uints.U8, n)
	for j := 0; j < n; j++ {
		lo := (n - 1 - j) * 8
		out[j] = bapi.ValueOf(api.FromBinary(bits[lo : lo+8]...))
	}
	return out
}

func packBE(api frontend.API, bapi *uints.Bytes, b []uints.U8) frontend.Variable {
	var acc frontend.Variable = 0
	for _, x := range b {
		acc = api.Add(api.Mul(acc, 256), bapi.Value(x))
	}
	return acc
}

func setPublic(c *PolicyCircuit, out credential.PublicOutput, currentTime uint64) {
	c.Subject = new(big.Int).SetBytes(out.Subject[:])
	c.CredentialType = out.CredentialType
	c.HashHi = new(big.Int).SetBytes(out.CredentialHash[:16])
	c.HashLo = new(big.Int).SetBytes(out.CredentialHash[16:])
	c.IssuedAt = out.IssuedAt
	c.ExpiresAt = out.ExpiresAt
	c.CurrentTime = currentTime
}

// Assignment builds the full witness for in. It does not run the validator:
// an input the policy rejects yields an assignment the circuit does not satisfy.
func Assignment(in credential.CredentialInput) (*PolicyCircuit, error) {
	if _, err := credential.ParseHeader(in.CredentialData); err != nil {
		return nil, err
	}
	if len(in.CredentialData) > MaxDataSize {
		return nil, fmt.Errorf("%w: credential data is %d bytes, max %d", ErrTooLarge, len(in.CredentialData), MaxDataSize)
	}
	if len(in.IssuerPubKey) > MaxPubKeySize {
		return nil, fmt.Errorf("%w: issuer key is %d bytes, max %d", ErrTooLarge, len(in.IssuerPubKey), MaxPubKeySize)
	}
	sum := credential.ComputeCredentialHash(in.Subject, in.CredentialType, in.CredentialData, in.IssuerPubKey)
	c := &PolicyCircuit{
		DataLen:   len(in.CredentialData),
		PubKeyLen: len(in.IssuerPubKey),
	}
	fillBytes(c.Data[:], in.CredentialData)
	fillBytes(c.PubKey[:], in.IssuerPubKey)
	setPublic(c, credential.Assemble(in.Subject, in.CredentialType, sum, in.IssuedAt, in.ExpiresAt), in.CurrentTime)
	return c, nil
}

func fillBytes(dst []frontend.Variable, src []byte) {
	for i := range dst {
		if i < len(src) {
			dst[i] = src[i]
		} else {
			dst[i] = 0
		}
	}
}

// PublicWitness builds the verifier-side witness from encoded public output
// bytes and the time the policy was evaluated at.
func PublicWitness(encoded []byte, currentTime uint64) (witness.Witness, error) {
	out, err := credential.DecodePublicOutput(encoded)
	if err != nil {
		return nil, err
	}
	var c PolicyCircuit
	setPublic(&c, out, currentTime)
	return frontend.NewWitness(&c, ecc.BN254.ScalarField(), frontend.PublicOnly())
}
