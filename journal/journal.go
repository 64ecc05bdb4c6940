// Package journal stores committed public outputs, keyed by content identifier.
//
// A journal only accepts bytes that decode as a canonical 72-byte public
// output. Entries are immutable; committing the same bytes twice is a no-op
// that returns the same CID.
package journal

import (
	"errors"
	"sort"

	"github.com/ipfs/go-cid"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
)

// Journal is the commitment sink.
//
// Contract:
//   - Commit MUST reject bytes that are not a decodable public output.
//   - Commit MUST be idempotent and entries MUST be immutable.
//   - CIDs are CIDv1 raw sha2-256 of the committed bytes.
//   - Get MUST return ErrNotFound when the CID is absent.
//   - List returns the CIDs committed for a subject, sorted by string form.
type Journal interface {
	Commit(encoded []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
	List(subject credential.Subject) ([]cid.Cid, error)
}

var (
	ErrNotFound    = errors.New("journal: not found")
	ErrInvalidCID  = errors.New("journal: invalid cid")
	ErrCIDMismatch = errors.New("journal: cid mismatch")
	ErrImmutable   = errors.New("journal: immutable entry mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Prepare decodes encoded and derives its CID. Implementations call it first in Commit.
func Prepare(encoded []byte) (credential.PublicOutput, cid.Cid, error) {
	out, err := credential.DecodePublicOutput(encoded)
	if err != nil {
		return credential.PublicOutput{}, cid.Undef, err
	}
	id, err := cidutil.Commitment(encoded)
	if err != nil {
		return credential.PublicOutput{}, cid.Undef, err
	}
	return out, id, nil
}

// CommitOutput encodes out and commits it to j.
func CommitOutput(j Journal, out credential.PublicOutput) (cid.Cid, error) {
	return j.Commit(out.Encode())
}

// GetOutput fetches and decodes the entry for id.
func GetOutput(j Journal, id cid.Cid) (credential.PublicOutput, error) {
	b, err := j.Get(id)
	if err != nil {
		return credential.PublicOutput{}, err
	}
	return credential.DecodePublicOutput(b)
}

func sortCIDs(ids []cid.Cid) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}
