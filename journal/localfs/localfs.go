// Package localfs is a filesystem-backed journal.
//
// Layout under the root directory:
//
//	objects/<cid[:2]>/<cid>          the 72 committed bytes, mode 0444
//	subjects/<subject hex>/<cid>     empty index marker
//
// It never uses the network and never depends on wall-clock time.
package localfs

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/journal"
)

type Journal struct {
	root string
}

var _ journal.Journal = (*Journal)(nil)

func init() {
	journal.MustRegister(journal.Backend{
		Name:        "localfs",
		Description: "Local filesystem journal (settings: dir)",
		Open: func(settings map[string]string) (journal.Journal, func() error, error) {
			dir := settings["dir"]
			if dir == "" {
				return nil, nil, fmt.Errorf("localfs: missing dir setting")
			}
			j, err := New(dir)
			return j, nil, err
		},
	})
}

// New opens a journal rooted at root, creating the directory if needed.
func New(root string) (*Journal, error) {
	if root == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	for _, dir := range []string{root, filepath.Join(root, "objects"), filepath.Join(root, "subjects")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Journal{root: root}, nil
}

func (j *Journal) Commit(encoded []byte) (cid.Cid, error) {
	out, id, err := journal.Prepare(encoded)
	if err != nil {
		return cid.Undef, err
	}
	if err := j.writeObject(id, encoded); err != nil {
		return cid.Undef, err
	}
	if err := j.index(out.Subject, id); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (j *Journal) writeObject(id cid.Cid, encoded []byte) error {
	path := j.objectPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if !os.IsExist(err) {
			return err
		}
		existing, rerr := j.Get(id)
		if rerr != nil || !bytes.Equal(existing, encoded) {
			return journal.ErrImmutable
		}
		return nil
	}
	if _, err := f.Write(encoded); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (j *Journal) index(subject credential.Subject, id cid.Cid) error {
	dir := j.subjectDir(subject)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, id.String()), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	return f.Close()
}

func (j *Journal) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, journal.ErrInvalidCID
	}
	b, err := os.ReadFile(j.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, journal.ErrNotFound
		}
		return nil, err
	}
	if !cidutil.Matches(id, b) {
		return nil, journal.ErrCIDMismatch
	}
	return b, nil
}

func (j *Journal) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(j.objectPath(id))
	return err == nil
}

func (j *Journal) List(subject credential.Subject) ([]cid.Cid, error) {
	entries, err := os.ReadDir(j.subjectDir(subject))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]cid.Cid, 0, len(entries))
	for _, e := range entries {
		id, err := cid.Decode(e.Name())
		if err != nil {
			return nil, fmt.Errorf("localfs: bad index entry %q: %w", e.Name(), err)
		}
		out = append(out, id)
	}
	// ReadDir sorts by file name, which is the CID string.
	return out, nil
}

func (j *Journal) objectPath(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(j.root, "objects", s)
	}
	return filepath.Join(j.root, "objects", s[:2], s)
}

func (j *Journal) subjectDir(subject credential.Subject) string {
	return filepath.Join(j.root, "subjects", hex.EncodeToString(subject[:]))
}
