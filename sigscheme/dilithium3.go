package sigscheme

import (
	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"xdao.co/zkcred/credential"
)

// Dilithium3 verifies post-quantum Dilithium3 signatures over Digest(Hash, message).
type Dilithium3 struct {
	// Hash is sha256 when empty.
	Hash string
}

func (d Dilithium3) Scheme() string { return schemeName(NameDilithium3, d.Hash) }

func (d Dilithium3) Verify(message, signature, pubkey []byte) error {
	if err := requireSignature(signature, mode3.SignatureSize); err != nil {
		return err
	}
	if len(signature) != mode3.SignatureSize {
		return credential.NewError(credential.RuleSignatureInvalid, "invalid dilithium3 signature length")
	}
	if err := requirePubKey(pubkey, mode3.PublicKeySize); err != nil {
		return err
	}
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(pubkey); err != nil {
		return credential.WrapError(credential.RulePubKeyInvalid, "invalid dilithium3 public key", err)
	}
	digest, err := Digest(d.Hash, message)
	if err != nil {
		return err
	}
	if !mode3.Verify(&pk, digest, signature) {
		return invalidSignature(NameDilithium3)
	}
	return nil
}
