package keys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcec_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"github.com/ethereum/go-ethereum/crypto"

	"xdao.co/zkcred/sigscheme"
)

// Signer produces issuer signatures over credential data for one scheme.
// PublicKey returns the bytes a verifier expects in issuer_pubkey.
type Signer interface {
	Scheme() string
	PublicKey() []byte
	Sign(message []byte) ([]byte, error)
}

// NewSigner builds the signer for scheme from a 32-byte seed.
// The structural scheme has no keys and is rejected.
func NewSigner(scheme string, seed []byte) (Signer, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	switch scheme {
	case sigscheme.NameSecp256k1:
		priv, _ := btcec.PrivKeyFromBytes(seed)
		if priv.Key.IsZero() {
			return nil, fmt.Errorf("seed is not a valid secp256k1 scalar")
		}
		return secp256k1Signer{priv: priv}, nil
	case sigscheme.NameEthereum:
		priv, err := crypto.ToECDSA(seed)
		if err != nil {
			return nil, fmt.Errorf("ethereum key: %w", err)
		}
		return ethereumSigner{priv: priv}, nil
	case sigscheme.NameEd25519:
		return ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
	case sigscheme.NameDilithium3:
		var s [SeedSize]byte
		copy(s[:], seed)
		pk, sk := mode3.NewKeyFromSeed(&s)
		return dilithium3Signer{pub: pk, priv: sk}, nil
	default:
		return nil, fmt.Errorf("no signer for scheme %q", scheme)
	}
}

// SignerSchemes lists the schemes NewSigner supports, sorted.
func SignerSchemes() []string {
	return []string{sigscheme.NameDilithium3, sigscheme.NameEd25519, sigscheme.NameEthereum, sigscheme.NameSecp256k1}
}

type secp256k1Signer struct{ priv *btcec.PrivateKey }

func (secp256k1Signer) Scheme() string { return sigscheme.NameSecp256k1 }

func (s secp256k1Signer) PublicKey() []byte { return s.priv.PubKey().SerializeCompressed() }

// Sign returns a 65-byte compact recoverable signature over sha256(message).
func (s secp256k1Signer) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	return btcec_ecdsa.SignCompact(s.priv, digest[:], true), nil
}

type ethereumSigner struct{ priv *ecdsa.PrivateKey }

func (ethereumSigner) Scheme() string { return sigscheme.NameEthereum }

func (s ethereumSigner) PublicKey() []byte { return crypto.CompressPubkey(&s.priv.PublicKey) }

// Sign returns r || s || v over keccak256(message), v in {0, 1}.
func (s ethereumSigner) Sign(message []byte) ([]byte, error) {
	return crypto.Sign(crypto.Keccak256(message), s.priv)
}

type ed25519Signer struct{ priv ed25519.PrivateKey }

func (ed25519Signer) Scheme() string { return sigscheme.NameEd25519 }

func (s ed25519Signer) PublicKey() []byte {
	return append([]byte(nil), s.priv.Public().(ed25519.PublicKey)...)
}

// Sign signs sha256(message).
func (s ed25519Signer) Sign(message []byte) ([]byte, error) {
	return SignEd25519(message, "sha256", s.priv)
}

type dilithium3Signer struct {
	pub  *mode3.PublicKey
	priv *mode3.PrivateKey
}

func (dilithium3Signer) Scheme() string { return sigscheme.NameDilithium3 }

func (s dilithium3Signer) PublicKey() []byte {
	b, _ := s.pub.MarshalBinary()
	return b
}

// Sign signs sha256(message).
func (s dilithium3Signer) Sign(message []byte) ([]byte, error) {
	return SignDilithium3(message, "sha256", s.priv)
}

// SignEd25519 returns an Ed25519 signature over hash(message).
// hashAlg must be one of: sha256, sha512, sha3-256.
func SignEd25519(message []byte, hashAlg string, privateKey ed25519.PrivateKey) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("ed25519 private key must be %d bytes", ed25519.PrivateKeySize)
	}
	digest, err := sigscheme.Digest(hashAlg, message)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(privateKey, digest), nil
}

// SignDilithium3 returns a dilithium3 signature over hash(message).
// hashAlg must be one of: sha256, sha512, sha3-256.
func SignDilithium3(message []byte, hashAlg string, privateKey *mode3.PrivateKey) ([]byte, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("missing private key")
	}
	digest, err := sigscheme.Digest(hashAlg, message)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, digest, sig)
	return sig, nil
}
