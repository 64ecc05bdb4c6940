package sigscheme_test

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"

	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/keys"
	"xdao.co/zkcred/sigscheme"
)

var message = credential.EncodeHeader(1, 2, []byte("accredited: income, net worth"))

func seed(b byte) []byte {
	return bytes.Repeat([]byte{b}, keys.SeedSize)
}

func mustSigner(t *testing.T, scheme string) keys.Signer {
	t.Helper()
	s, err := keys.NewSigner(scheme, seed(0x11))
	if err != nil {
		t.Fatalf("NewSigner(%s): %v", scheme, err)
	}
	return s
}

func mustLookup(t *testing.T, name string) sigscheme.Verifier {
	t.Helper()
	v, err := sigscheme.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", name, err)
	}
	return v
}

func requireRule(t *testing.T, err error, rule string) {
	t.Helper()
	if got := credential.RuleID(err); got != rule {
		t.Fatalf("expected rule %s, got %q (%v)", rule, got, err)
	}
}

func TestRegistry(t *testing.T) {
	names := map[string]bool{}
	for _, name := range sigscheme.Names() {
		names[name] = true
	}
	for _, name := range []string{"dilithium3", "ed25519", "ethereum", "secp256k1", "structural"} {
		if !names[name] {
			t.Fatalf("built-in %s not registered: %v", name, sigscheme.Names())
		}
		if mustLookup(t, name).Scheme() != name {
			t.Fatalf("%s registered under the wrong name", name)
		}
	}

	_, err := sigscheme.Lookup("rsa")
	requireRule(t, err, credential.RuleSchemeUnknown)

	if err := sigscheme.Register(sigscheme.Ed25519{}); err == nil {
		t.Fatalf("duplicate registration accepted")
	}
	requireRule(t, sigscheme.Register(nil), credential.RuleNilVerifier)

	_ = sigscheme.Register(sigscheme.Ed25519{Hash: "sha3-256"})
	if _, err := sigscheme.Lookup("ed25519+sha3-256"); err != nil {
		t.Fatalf("Lookup after Register: %v", err)
	}
}

func TestGenuineAndTampered(t *testing.T) {
	for _, scheme := range keys.SignerSchemes() {
		t.Run(scheme, func(t *testing.T) {
			signer := mustSigner(t, scheme)
			v := mustLookup(t, scheme)
			sig, err := signer.Sign(message)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			pub := signer.PublicKey()

			if err := v.Verify(message, sig, pub); err != nil {
				t.Fatalf("genuine signature rejected: %v", err)
			}

			tampered := append([]byte(nil), message...)
			tampered[len(tampered)-1] ^= 0x01
			if err := v.Verify(tampered, sig, pub); !credential.IsCode(err, credential.CodeInvalidSignature) {
				t.Fatalf("tampered message: %v", err)
			}

			badSig := append([]byte(nil), sig...)
			badSig[len(badSig)/2] ^= 0x80
			if err := v.Verify(message, badSig, pub); !credential.IsKind(err, credential.KindSignature) {
				t.Fatalf("tampered signature: %v", err)
			}

			other, err := keys.NewSigner(scheme, seed(0x22))
			if err != nil {
				t.Fatalf("NewSigner: %v", err)
			}
			if err := v.Verify(message, sig, other.PublicKey()); !credential.IsCode(err, credential.CodeInvalidSignature) {
				t.Fatalf("wrong key: %v", err)
			}
		})
	}
}

func TestStructuralChecksComeFirst(t *testing.T) {
	for _, name := range []string{"structural", "secp256k1", "ethereum", "ed25519", "dilithium3"} {
		v := mustLookup(t, name)
		requireRule(t, v.Verify(message, nil, seed(0x02)), credential.RuleSignatureEmpty)
		requireRule(t, v.Verify(message, make([]byte, 10), seed(0x02)), credential.RuleSignatureShort)
	}
	for _, name := range []string{"structural", "secp256k1", "ethereum"} {
		v := mustLookup(t, name)
		requireRule(t, v.Verify(message, make([]byte, 64), nil), credential.RulePubKeyEmpty)
		requireRule(t, v.Verify(message, make([]byte, 64), make([]byte, 32)), credential.RulePubKeyLength)
	}
	requireRule(t, mustLookup(t, "ed25519").Verify(message, make([]byte, 64), make([]byte, 33)), credential.RulePubKeyLength)
}

func TestStructuralAcceptsAnyMessage(t *testing.T) {
	v := mustLookup(t, "structural")
	if err := v.Verify(nil, make([]byte, 64), bytes.Repeat([]byte{0x02}, 33)); err != nil {
		t.Fatalf("structural: %v", err)
	}
}

func TestSecp256k1_SignatureForms(t *testing.T) {
	priv, pub := btcec.PrivKeyFromBytes(seed(0x33))
	digest := sha256.Sum256(message)
	v := sigscheme.Secp256k1{}

	compact := ecdsa.SignCompact(priv, digest[:], true)
	if err := v.Verify(message, compact, pub.SerializeCompressed()); err != nil {
		t.Fatalf("compact: %v", err)
	}
	if err := v.Verify(message, compact[1:], pub.SerializeUncompressed()); err != nil {
		t.Fatalf("r||s with uncompressed key: %v", err)
	}
	der := ecdsa.Sign(priv, digest[:]).Serialize()
	if len(der) >= credential.MinSignatureSize {
		if err := v.Verify(message, der, pub.SerializeCompressed()); err != nil {
			t.Fatalf("DER: %v", err)
		}
	}

	requireRule(t, v.Verify(message, make([]byte, 64), pub.SerializeCompressed()), credential.RuleSignatureInvalid)
	badKey := append([]byte{0x05}, bytes.Repeat([]byte{0x02}, 32)...)
	requireRule(t, v.Verify(message, compact, badKey), credential.RulePubKeyInvalid)
	requireRule(t, v.Verify(message, make([]byte, 80), pub.SerializeCompressed()), credential.RuleSignatureInvalid)
}

func TestEthereum_SignatureForms(t *testing.T) {
	priv, err := crypto.ToECDSA(seed(0x44))
	if err != nil {
		t.Fatalf("ToECDSA: %v", err)
	}
	sig, err := crypto.Sign(crypto.Keccak256(message), priv)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	v := sigscheme.Ethereum{}
	compressed := crypto.CompressPubkey(&priv.PublicKey)
	uncompressed := crypto.FromECDSAPub(&priv.PublicKey)

	for name, s := range map[string][]byte{
		"r||s":       sig[:64],
		"r||s||v":    sig,
		"v+27 style": append(append([]byte(nil), sig[:64]...), sig[64]+27),
	} {
		for _, pub := range [][]byte{compressed, uncompressed} {
			if err := v.Verify(message, s, pub); err != nil {
				t.Fatalf("%s with %d-byte key: %v", name, len(pub), err)
			}
		}
	}

	badV := append([]byte(nil), sig...)
	badV[64] = 5
	requireRule(t, v.Verify(message, badV, compressed), credential.RuleSignatureInvalid)
	requireRule(t, v.Verify(message, make([]byte, 70), compressed), credential.RuleSignatureInvalid)

	addr, err := sigscheme.Address(compressed)
	if err != nil {
		t.Fatalf("Address: %v", err)
	}
	if addr != credential.Subject(crypto.PubkeyToAddress(priv.PublicKey)) {
		t.Fatalf("Address mismatch")
	}
}

func TestHashVariants(t *testing.T) {
	priv := ed25519.NewKeyFromSeed(seed(0x55))
	pub := priv.Public().(ed25519.PublicKey)
	for _, alg := range []string{"sha256", "sha512", "sha3-256"} {
		sig, err := keys.SignEd25519(message, alg, priv)
		if err != nil {
			t.Fatalf("SignEd25519(%s): %v", alg, err)
		}
		if err := (sigscheme.Ed25519{Hash: alg}).Verify(message, sig, pub); err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if alg != "sha256" {
			if err := (sigscheme.Ed25519{}).Verify(message, sig, pub); err == nil {
				t.Fatalf("%s signature verified under sha256", alg)
			}
			if got := (sigscheme.Ed25519{Hash: alg}).Scheme(); got != "ed25519+"+alg {
				t.Fatalf("Scheme = %s", got)
			}
		}
	}

	if _, err := sigscheme.Digest("md5", message); !credential.IsKind(err, credential.KindInternal) {
		t.Fatalf("unknown digest: %v", err)
	}
	d, err := sigscheme.Digest("", message)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	want := sha256.Sum256(message)
	if !bytes.Equal(d, want[:]) {
		t.Fatalf("default digest is not sha256")
	}
}
