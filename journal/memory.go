package journal

import (
	"bytes"
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/zkcred/credential"
)

// Memory is an in-process Journal. The zero value is not usable; use NewMemory.
type Memory struct {
	mu      sync.RWMutex
	entries map[cid.Cid][]byte
	index   map[credential.Subject][]cid.Cid
}

var _ Journal = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		entries: map[cid.Cid][]byte{},
		index:   map[credential.Subject][]cid.Cid{},
	}
}

func (m *Memory) Commit(encoded []byte) (cid.Cid, error) {
	out, id, err := Prepare(encoded)
	if err != nil {
		return cid.Undef, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[id]; ok {
		if !bytes.Equal(existing, encoded) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	m.entries[id] = append([]byte(nil), encoded...)
	m.index[out.Subject] = append(m.index[out.Subject], id)
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Has(id cid.Cid) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[id]
	return ok
}

func (m *Memory) List(subject credential.Subject) ([]cid.Cid, error) {
	m.mu.RLock()
	out := append([]cid.Cid(nil), m.index[subject]...)
	m.mu.RUnlock()
	sortCIDs(out)
	return out, nil
}
