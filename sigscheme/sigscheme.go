// Package sigscheme provides the issuer signature verifiers a credential.Validator can run.
//
// Every verifier applies its own structural checks before any cryptography and
// reports rejections as *credential.Error values with the InvalidSignature or
// InvalidPublicKey codes. The structural scheme is the default; the others
// verify the signature over the credential data.
package sigscheme

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/crypto/sha3"

	"xdao.co/zkcred/credential"
)

// Verifier is a named signature scheme.
type Verifier interface {
	credential.Verifier
	Scheme() string
}

// Built-in scheme names.
const (
	NameStructural = "structural"
	NameSecp256k1  = "secp256k1"
	NameEthereum   = "ethereum"
	NameEd25519    = "ed25519"
	NameDilithium3 = "dilithium3"
)

var (
	mu       sync.RWMutex
	registry = map[string]Verifier{}
)

func init() {
	for _, v := range []Verifier{
		Structural{},
		Secp256k1{},
		Ethereum{},
		Ed25519{},
		Dilithium3{},
	} {
		if err := Register(v); err != nil {
			panic(err)
		}
	}
}

// Register adds a verifier under its scheme name. Names are unique.
func Register(v Verifier) error {
	if v == nil {
		return credential.NewError(credential.RuleNilVerifier, "nil verifier")
	}
	name := v.Scheme()
	if name == "" {
		return fmt.Errorf("sigscheme: empty scheme name")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("sigscheme: scheme %q already registered", name)
	}
	registry[name] = v
	return nil
}

// Lookup returns the verifier registered under name.
func Lookup(name string) (Verifier, error) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := registry[name]
	if !ok {
		return nil, credential.NewError(credential.RuleSchemeUnknown, fmt.Sprintf("unknown signature scheme %q", name))
	}
	return v, nil
}

// Names returns the registered scheme names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validator returns a credential.Validator that checks signatures with the named scheme.
func Validator(name string) (credential.Validator, error) {
	v, err := Lookup(name)
	if err != nil {
		return credential.Validator{}, err
	}
	return credential.Validator{Verifier: v}, nil
}

// Digest hashes message with one of sha256 (the default for ""), sha512 or sha3-256.
func Digest(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "", "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, credential.NewError(credential.RuleSchemeUnknown, fmt.Sprintf("unsupported hash algorithm %q", hashAlg))
	}
}

func requireSignature(signature []byte, size int) error {
	if len(signature) == 0 {
		return credential.NewError(credential.RuleSignatureEmpty, "signature is empty")
	}
	if len(signature) < size {
		return credential.NewError(credential.RuleSignatureShort, fmt.Sprintf("signature is %d bytes, need at least %d", len(signature), size))
	}
	return nil
}

func requirePubKey(pubkey []byte, sizes ...int) error {
	if len(pubkey) == 0 {
		return credential.NewError(credential.RulePubKeyEmpty, "issuer public key is empty")
	}
	for _, n := range sizes {
		if len(pubkey) == n {
			return nil
		}
	}
	return credential.NewError(credential.RulePubKeyLength, fmt.Sprintf("issuer public key is %d bytes, want one of %v", len(pubkey), sizes))
}

func invalidSignature(scheme string) error {
	return credential.NewError(credential.RuleSignatureInvalid, scheme+" signature does not verify")
}
