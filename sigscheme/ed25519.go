package sigscheme

import (
	"crypto/ed25519"

	"xdao.co/zkcred/credential"
)

// Ed25519 verifies Ed25519 signatures over Digest(Hash, message). Keys are 32 bytes.
type Ed25519 struct {
	// Hash is sha256 when empty.
	Hash string
}

func (e Ed25519) Scheme() string { return schemeName(NameEd25519, e.Hash) }

func (e Ed25519) Verify(message, signature, pubkey []byte) error {
	if err := requireSignature(signature, ed25519.SignatureSize); err != nil {
		return err
	}
	if len(signature) != ed25519.SignatureSize {
		return credential.NewError(credential.RuleSignatureInvalid, "invalid ed25519 signature length")
	}
	if err := requirePubKey(pubkey, ed25519.PublicKeySize); err != nil {
		return err
	}
	digest, err := Digest(e.Hash, message)
	if err != nil {
		return err
	}
	if !ed25519.Verify(ed25519.PublicKey(pubkey), digest, signature) {
		return invalidSignature(NameEd25519)
	}
	return nil
}

func schemeName(base, hashAlg string) string {
	if hashAlg == "" || hashAlg == "sha256" {
		return base
	}
	return base + "+" + hashAlg
}
