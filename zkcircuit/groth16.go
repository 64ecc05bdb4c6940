package zkcircuit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"xdao.co/zkcred/credential"
)

// quiet disables gnark's zerolog output until the returned func runs.
func quiet() func() {
	old := gnarklogger.Logger()
	gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
	return func() { gnarklogger.Set(old) }
}

// Compile builds the constraint system for PolicyCircuit. It is deterministic,
// so a prover can recompile instead of shipping the constraint system.
func Compile() (constraint.ConstraintSystem, error) {
	defer quiet()()
	var c PolicyCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &c)
	if err != nil {
		return nil, fmt.Errorf("compile policy circuit: %w", err)
	}
	return cs, nil
}

// Keys holds a compiled circuit with its groth16 keys. A prover needs CS and
// PK; a verifier needs only VK.
type Keys struct {
	CS constraint.ConstraintSystem
	PK groth16.ProvingKey
	VK groth16.VerifyingKey
}

// Setup compiles the circuit and runs a groth16 setup. Whoever runs it can
// forge proofs against the resulting VK, so verifiers must obtain the VK from
// a setup they trust rather than from the prover.
func Setup() (*Keys, error) {
	cs, err := Compile()
	if err != nil {
		return nil, err
	}
	defer quiet()()
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	return &Keys{CS: cs, PK: pk, VK: vk}, nil
}

// LoadProver recompiles the circuit and reads a proving key written by
// WriteProvingKey.
func LoadProver(r io.Reader) (*Keys, error) {
	cs, err := Compile()
	if err != nil {
		return nil, err
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read proving key: %w", err)
	}
	return &Keys{CS: cs, PK: pk}, nil
}

// ReadVerifyingKey parses a verifying key written by WriteVerifyingKey.
func ReadVerifyingKey(r io.Reader) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read verifying key: %w", err)
	}
	return vk, nil
}

func (k *Keys) WriteProvingKey(w io.Writer) error {
	if k.PK == nil {
		return fmt.Errorf("zkcircuit: no proving key")
	}
	_, err := k.PK.WriteTo(w)
	return err
}

func (k *Keys) WriteVerifyingKey(w io.Writer) error {
	if k.VK == nil {
		return fmt.Errorf("zkcircuit: no verifying key")
	}
	_, err := k.VK.WriteTo(w)
	return err
}

// VerifyingKeyHash is the hex SHA-256 of the serialized verifying key, for
// pinning a VK out of band.
func VerifyingKeyHash(vk groth16.VerifyingKey) (string, error) {
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// Prove validates in with v and, only when it passes, proves the policy for it
// at in.CurrentTime. It returns the public output alongside the proof.
func (k *Keys) Prove(v credential.Validator, in credential.CredentialInput) (credential.PublicOutput, groth16.Proof, error) {
	out, err := v.Validate(in)
	if err != nil {
		return credential.PublicOutput{}, nil, err
	}
	assignment, err := Assignment(in)
	if err != nil {
		return credential.PublicOutput{}, nil, err
	}
	defer quiet()()
	full, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return credential.PublicOutput{}, nil, fmt.Errorf("build witness: %w", err)
	}
	proof, err := groth16.Prove(k.CS, k.PK, full)
	if err != nil {
		return credential.PublicOutput{}, nil, fmt.Errorf("groth16 prove: %w", err)
	}
	return out, proof, nil
}

// Verify checks proof against the encoded 72-byte public output evaluated at currentTime.
func (k *Keys) Verify(proof groth16.Proof, encoded []byte, currentTime uint64) error {
	return Verify(k.VK, proof, encoded, currentTime)
}

// Verify checks proof with vk against the encoded public output evaluated at currentTime.
func Verify(vk groth16.VerifyingKey, proof groth16.Proof, encoded []byte, currentTime uint64) error {
	public, err := PublicWitness(encoded, currentTime)
	if err != nil {
		return err
	}
	defer quiet()()
	return groth16.Verify(proof, vk, public)
}

// MarshalProof serializes a proof in gnark's binary form.
func MarshalProof(proof groth16.Proof) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalProof parses a BN254 groth16 proof.
func UnmarshalProof(b []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("read proof: %w", err)
	}
	return proof, nil
}

// VerifyWithKey checks a serialized proof with a serialized verifying key.
func VerifyWithKey(vkBytes, proofBytes, encoded []byte, currentTime uint64) error {
	vk, err := ReadVerifyingKey(bytes.NewReader(vkBytes))
	if err != nil {
		return err
	}
	proof, err := UnmarshalProof(proofBytes)
	if err != nil {
		return err
	}
	return Verify(vk, proof, encoded, currentTime)
}
