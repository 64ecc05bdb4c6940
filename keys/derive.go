package keys

import (
	"crypto/sha256"
	"fmt"
)

// SeedSize is the width of every issuer seed.
const SeedSize = 32

// DeriveRoleSeed deterministically derives a role-specific issuer seed from a root seed.
// Seeds for different roles, or for the same role under different schemes, are unrelated.
func DeriveRoleSeed(rootSeed []byte, scheme, role string) ([]byte, error) {
	if len(rootSeed) != SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("xdao-zkcred-issuer-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("scheme:"))
	_, _ = h.Write([]byte(scheme))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	return h.Sum(nil), nil
}
