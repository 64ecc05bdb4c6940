// Package cidutil derives content identifiers for encoded public outputs.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Commitment returns the CIDv1 (raw codec, sha2-256 multihash) of encoded output bytes.
func Commitment(encoded []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(encoded, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// CommitmentString is Commitment rendered in its default base32 string form.
func CommitmentString(encoded []byte) string {
	c, err := Commitment(encoded)
	if err != nil {
		// multihash.Sum only fails for unknown codes or bad lengths.
		return ""
	}
	return c.String()
}

// Parse decodes a commitment CID and checks it uses the raw codec and a sha2-256 multihash.
func Parse(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if c.Prefix().Codec != cid.Raw {
		return cid.Undef, fmt.Errorf("cid %s: codec 0x%x is not raw", s, c.Prefix().Codec)
	}
	if c.Prefix().MhType != multihash.SHA2_256 {
		return cid.Undef, fmt.Errorf("cid %s: multihash 0x%x is not sha2-256", s, c.Prefix().MhType)
	}
	return c, nil
}

// Matches reports whether encoded hashes to c.
func Matches(c cid.Cid, encoded []byte) bool {
	got, err := Commitment(encoded)
	return err == nil && got.Equals(c)
}
