package journal

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/zkcred/credential"
)

// Named associates a Journal with a stable backend name.
type Named struct {
	Name    string
	Journal Journal
}

// Replicating commits to every backend and reads from the first that has the entry.
//
// With WriteFirst set, Commit writes only to the first backend and the rest
// serve as read fallbacks. Otherwise every backend must return the same CID.
type Replicating struct {
	Backends   []Named
	WriteFirst bool
}

var _ Journal = Replicating{}

// CommitAll writes encoded to all backends and returns the per-backend CIDs.
func (r Replicating) CommitAll(encoded []byte) (cid.Cid, map[string]cid.Cid, error) {
	_, want, err := Prepare(encoded)
	if err != nil {
		return cid.Undef, nil, err
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("journal: no backends")
	}
	targets := r.Backends
	if r.WriteFirst {
		targets = targets[:1]
	}
	out := make(map[string]cid.Cid, len(targets))
	for _, b := range targets {
		if b.Journal == nil {
			return cid.Undef, nil, fmt.Errorf("journal: nil backend %q", b.Name)
		}
		got, err := b.Journal.Commit(encoded)
		if err != nil {
			return cid.Undef, out, fmt.Errorf("journal: backend %q: %w", b.Name, err)
		}
		out[b.Name] = got
		if !got.Equals(want) {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r Replicating) Commit(encoded []byte) (cid.Cid, error) {
	id, _, err := r.CommitAll(encoded)
	return id, err
}

func (r Replicating) Get(id cid.Cid) ([]byte, error) {
	for _, b := range r.Backends {
		if b.Journal == nil {
			continue
		}
		out, err := b.Journal.Get(id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r Replicating) Has(id cid.Cid) bool {
	for _, b := range r.Backends {
		if b.Journal != nil && b.Journal.Has(id) {
			return true
		}
	}
	return false
}

// List merges the subject index of every backend.
func (r Replicating) List(subject credential.Subject) ([]cid.Cid, error) {
	seen := map[cid.Cid]struct{}{}
	var out []cid.Cid
	for _, b := range r.Backends {
		if b.Journal == nil {
			continue
		}
		ids, err := b.Journal.List(subject)
		if err != nil {
			return nil, fmt.Errorf("journal: backend %q: %w", b.Name, err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	sortCIDs(out)
	return out, nil
}
