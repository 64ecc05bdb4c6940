package sigscheme

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"xdao.co/zkcred/credential"
)

// Ethereum verifies secp256k1 signatures over keccak256(message), the way
// Ethereum accounts sign.
//
// Accepted signature forms are 64 bytes (r || s) and 65 bytes (r || s || v,
// v in {0, 1, 27, 28}); for the latter the recovered key must equal pubkey.
type Ethereum struct{}

func (Ethereum) Scheme() string { return NameEthereum }

func (Ethereum) Verify(message, signature, pubkey []byte) error {
	if err := requireSignature(signature, credential.MinSignatureSize); err != nil {
		return err
	}
	if err := requirePubKey(pubkey, credential.CompressedPubKeySize, credential.UncompressedPubKeySize); err != nil {
		return err
	}
	pub, err := parseEthereumPubKey(pubkey)
	if err != nil {
		return credential.WrapError(credential.RulePubKeyInvalid, "invalid secp256k1 public key", err)
	}
	uncompressed := crypto.FromECDSAPub(pub)
	digest := crypto.Keccak256(message)

	switch len(signature) {
	case 64:
		if !crypto.VerifySignature(uncompressed, digest, signature) {
			return invalidSignature(NameEthereum)
		}
		return nil
	case 65:
		sig := append([]byte(nil), signature...)
		if sig[64] >= 27 {
			sig[64] -= 27
		}
		if sig[64] > 1 {
			return credential.NewError(credential.RuleSignatureInvalid, fmt.Sprintf("invalid recovery id %d", signature[64]))
		}
		recovered, err := crypto.Ecrecover(digest, sig)
		if err != nil {
			return credential.WrapError(credential.RuleSignatureInvalid, "ethereum key recovery failed", err)
		}
		if !bytes.Equal(recovered, uncompressed) {
			return credential.NewError(credential.RuleSignatureInvalid, "ethereum signature recovers a different key")
		}
		return nil
	default:
		return credential.NewError(credential.RuleSignatureInvalid, fmt.Sprintf("ethereum signature is %d bytes, want 64 or 65", len(signature)))
	}
}

func parseEthereumPubKey(b []byte) (*ecdsa.PublicKey, error) {
	if len(b) == credential.CompressedPubKeySize {
		return crypto.DecompressPubkey(b)
	}
	return crypto.UnmarshalPubkey(b)
}

// Address returns the Ethereum address of an issuer key, for display.
func Address(pubkey []byte) (credential.Subject, error) {
	pub, err := parseEthereumPubKey(pubkey)
	if err != nil {
		return credential.Subject{}, err
	}
	return credential.Subject(crypto.PubkeyToAddress(*pub)), nil
}
