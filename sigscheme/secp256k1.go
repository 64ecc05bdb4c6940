package sigscheme

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"xdao.co/zkcred/credential"
)

// Secp256k1 verifies ECDSA signatures over sha256(message).
//
// Accepted signature forms:
//   - 64 bytes: r || s
//   - 65 bytes: compact recoverable, header || r || s; the recovered key must equal pubkey
//   - anything longer: DER
type Secp256k1 struct{}

func (Secp256k1) Scheme() string { return NameSecp256k1 }

func (Secp256k1) Verify(message, signature, pubkey []byte) error {
	if err := requireSignature(signature, credential.MinSignatureSize); err != nil {
		return err
	}
	if err := requirePubKey(pubkey, credential.CompressedPubKeySize, credential.UncompressedPubKeySize); err != nil {
		return err
	}
	pub, err := btcec.ParsePubKey(pubkey)
	if err != nil {
		return credential.WrapError(credential.RulePubKeyInvalid, "invalid secp256k1 public key", err)
	}
	digest := sha256.Sum256(message)

	switch len(signature) {
	case 64:
		var r, s btcec.ModNScalar
		if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
			return credential.NewError(credential.RuleSignatureInvalid, "secp256k1 signature r out of range")
		}
		if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
			return credential.NewError(credential.RuleSignatureInvalid, "secp256k1 signature s out of range")
		}
		if !ecdsa.NewSignature(&r, &s).Verify(digest[:], pub) {
			return invalidSignature(NameSecp256k1)
		}
		return nil
	case 65:
		recovered, _, err := ecdsa.RecoverCompact(signature, digest[:])
		if err != nil {
			return credential.WrapError(credential.RuleSignatureInvalid, "secp256k1 key recovery failed", err)
		}
		if !recovered.IsEqual(pub) {
			return credential.NewError(credential.RuleSignatureInvalid, "secp256k1 signature recovers a different key")
		}
		return nil
	default:
		sig, err := ecdsa.ParseDERSignature(signature)
		if err != nil {
			return credential.WrapError(credential.RuleSignatureInvalid, fmt.Sprintf("secp256k1 signature is %d bytes and not DER", len(signature)), err)
		}
		if !sig.Verify(digest[:], pub) {
			return invalidSignature(NameSecp256k1)
		}
		return nil
	}
}
