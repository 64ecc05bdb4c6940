// Package bundle moves committed outputs between journals as deterministic TAR archives.
//
// Layout:
//
//	outputs/<cid>   the 72-byte encoded public output
//	index.json      optional, non-authoritative summary
package bundle

import (
	"archive/tar"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/journal"
)

// FormatVersion is the index.json schema version.
const FormatVersion = 1

const outputsDir = "outputs/"

var epoch = time.Unix(0, 0).UTC()

type ExportOptions struct {
	IncludeIndex bool
}

// Export writes the outputs for ids to w. Entries are sorted by CID and TAR
// headers are normalized, so the same set of outputs always yields the same bytes.
func Export(w io.Writer, j journal.Journal, ids []cid.Cid, opts ExportOptions) error {
	if j == nil {
		return errors.New("bundle: nil journal")
	}
	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return journal.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	names := make([]string, 0, len(uniq))
	for s := range uniq {
		names = append(names, s)
	}
	sort.Strings(names)

	tw := tar.NewWriter(w)
	entries := make([]indexEntry, 0, len(names))
	for _, name := range names {
		id := uniq[name]
		b, err := j.Get(id)
		if err != nil {
			_ = tw.Close()
			return fmt.Errorf("bundle: %s: %w", name, err)
		}
		if !cidutil.Matches(id, b) {
			_ = tw.Close()
			return journal.ErrCIDMismatch
		}
		out, err := credential.DecodePublicOutput(b)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeEntry(tw, outputsDir+name, b); err != nil {
			_ = tw.Close()
			return err
		}
		entries = append(entries, indexEntry{CID: name, Subject: out.Subject.String(), CredentialType: out.CredentialType})
	}

	if opts.IncludeIndex {
		b, err := json.Marshal(index{Version: FormatVersion, Outputs: entries})
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeEntry(tw, "index.json", append(b, '\n')); err != nil {
			_ = tw.Close()
			return err
		}
	}
	return tw.Close()
}

// ExportSubject exports every output committed for subject.
func ExportSubject(w io.Writer, j journal.Journal, subject credential.Subject, opts ExportOptions) error {
	if j == nil {
		return errors.New("bundle: nil journal")
	}
	ids, err := j.List(subject)
	if err != nil {
		return err
	}
	return Export(w, j, ids, opts)
}

// Import commits every output in the bundle read from r to j and returns
// their CIDs in archive order. Unknown entries are rejected.
func Import(r io.Reader, j journal.Journal) ([]cid.Cid, error) {
	if j == nil {
		return nil, errors.New("bundle: nil journal")
	}
	tr := tar.NewReader(r)
	seen := map[string]struct{}{}
	var imported []cid.Cid

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return imported, nil
		}
		if err != nil {
			return imported, err
		}
		name := cleanPath(h.Name)
		if name == "" {
			return imported, fmt.Errorf("bundle: invalid entry path %q", h.Name)
		}
		if h.Typeflag != tar.TypeReg {
			return imported, fmt.Errorf("bundle: unexpected entry type %v (%s)", h.Typeflag, name)
		}
		if name == "index.json" {
			continue
		}
		if !strings.HasPrefix(name, outputsDir) {
			return imported, fmt.Errorf("bundle: unknown entry %s", name)
		}
		if h.Size != credential.EncodedOutputSize {
			return imported, credential.NewError(credential.RuleOutputLength,
				fmt.Sprintf("bundle entry %s is %d bytes", name, h.Size))
		}

		id, err := cidutil.Parse(strings.TrimPrefix(name, outputsDir))
		if err != nil {
			return imported, journal.ErrInvalidCID
		}
		if _, dup := seen[id.String()]; dup {
			return imported, fmt.Errorf("bundle: duplicate entry %s", id)
		}
		seen[id.String()] = struct{}{}

		payload, err := io.ReadAll(tr)
		if err != nil {
			return imported, err
		}
		if !cidutil.Matches(id, payload) {
			return imported, journal.ErrCIDMismatch
		}
		got, err := j.Commit(payload)
		if err != nil {
			return imported, err
		}
		if !got.Equals(id) {
			return imported, journal.ErrCIDMismatch
		}
		imported = append(imported, id)
	}
}

type index struct {
	Version int          `json:"version"`
	Outputs []indexEntry `json:"outputs"`
}

type indexEntry struct {
	CID            string `json:"cid"`
	Subject        string `json:"subject"`
	CredentialType uint32 `json:"credential_type"`
}

func writeEntry(tw *tar.Writer, name string, content []byte) error {
	if err := tw.WriteHeader(&tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch,
		Typeflag: tar.TypeReg,
		Format:   tar.FormatUSTAR,
	}); err != nil {
		return err
	}
	_, err := tw.Write(content)
	return err
}

// cleanPath returns "" for absolute, empty, or traversing paths.
func cleanPath(name string) string {
	name = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"), "./")
	if name == "" || strings.HasPrefix(name, "/") {
		return ""
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return name
}
