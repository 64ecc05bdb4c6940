package credential

import "fmt"

// Signature and key widths accepted by the structural check.
const (
	MinSignatureSize       = 64
	CompressedPubKeySize   = 33
	UncompressedPubKeySize = 65
)

// Verifier checks an issuer signature over a message.
//
// Implementations must be deterministic and return a *Error with Code
// InvalidSignature or InvalidPublicKey on rejection.
type Verifier interface {
	Verify(message, signature, pubkey []byte) error
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(message, signature, pubkey []byte) error

func (f VerifierFunc) Verify(message, signature, pubkey []byte) error {
	return f(message, signature, pubkey)
}

// CheckSignatureStructure performs the structural signature check: the
// signature must be at least 64 bytes and the key 33 (compressed) or
// 65 (uncompressed) bytes.
//
// It does not check that signature was produced over any message by the key
// holder. Use a cryptographic Verifier for that.
func CheckSignatureStructure(signature, pubkey []byte) error {
	if len(signature) == 0 {
		return NewError(RuleSignatureEmpty, "signature is empty")
	}
	if len(signature) < MinSignatureSize {
		return NewError(RuleSignatureShort, fmt.Sprintf("signature is %d bytes, need at least %d", len(signature), MinSignatureSize))
	}
	if len(pubkey) == 0 {
		return NewError(RulePubKeyEmpty, "issuer public key is empty")
	}
	if len(pubkey) != CompressedPubKeySize && len(pubkey) != UncompressedPubKeySize {
		return NewError(RulePubKeyLength, fmt.Sprintf("issuer public key is %d bytes, want %d or %d", len(pubkey), CompressedPubKeySize, UncompressedPubKeySize))
	}
	return nil
}

// StructuralVerifier is the default Verifier: CheckSignatureStructure, message ignored.
var StructuralVerifier Verifier = VerifierFunc(func(_, signature, pubkey []byte) error {
	return CheckSignatureStructure(signature, pubkey)
})
