package bundle_test

import (
	"archive/tar"
	"bytes"
	"testing"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/journal"
	"xdao.co/zkcred/journal/bundle"
	"xdao.co/zkcred/journal/localfs"
	"xdao.co/zkcred/journal/testkit"
)

func commit(t *testing.T, j journal.Journal, outs ...credential.PublicOutput) []cid.Cid {
	t.Helper()
	ids := make([]cid.Cid, 0, len(outs))
	for _, out := range outs {
		id, err := journal.CommitOutput(j, out)
		if err != nil {
			t.Fatalf("CommitOutput: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestExport_Deterministic(t *testing.T) {
	j := journal.NewMemory()
	ids := commit(t, j, testkit.Output(1, 1), testkit.Output(1, 2), testkit.Output(2, 1))

	var a, b bytes.Buffer
	if err := bundle.Export(&a, j, []cid.Cid{ids[2], ids[0], ids[1]}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}
	if err := bundle.Export(&b, j, []cid.Cid{ids[1], ids[2], ids[0], ids[1]}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("expected deterministic bundle bytes")
	}
}

func TestExportSubject_ImportRoundTrip(t *testing.T) {
	src, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mine := commit(t, src, testkit.Output(7, 1), testkit.Output(7, 2))
	commit(t, src, testkit.Output(8, 1))

	var buf bytes.Buffer
	subject := testkit.Output(7, 0).Subject
	if err := bundle.ExportSubject(&buf, src, subject, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	dst := journal.NewMemory()
	imported, err := bundle.Import(bytes.NewReader(buf.Bytes()), dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(imported) != len(mine) {
		t.Fatalf("imported %d outputs, want %d", len(imported), len(mine))
	}
	for _, id := range mine {
		if !dst.Has(id) {
			t.Fatalf("missing %s after import", id)
		}
	}
	listed, err := dst.List(subject)
	if err != nil || len(listed) != 2 {
		t.Fatalf("List after import: %v %v", listed, err)
	}
	if other, _ := dst.List(testkit.Output(8, 0).Subject); len(other) != 0 {
		t.Fatalf("other subject leaked into bundle")
	}
}

func TestImport_Rejects(t *testing.T) {
	good := testkit.Output(3, 1).Encode()
	goodID, _ := cidutil.Commitment(good)
	otherID, _ := cidutil.Commitment(testkit.Output(3, 2).Encode())

	cases := []struct {
		name    string
		entry   string
		content []byte
	}{
		{"cid mismatch", "outputs/" + otherID.String(), good},
		{"short output", "outputs/" + goodID.String(), good[:71]},
		{"unknown entry", "notes.txt", []byte("hi")},
		{"traversal", "outputs/../" + goodID.String(), good},
		{"bad cid", "outputs/not-a-cid", good},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dst := journal.NewMemory()
			if _, err := bundle.Import(bytes.NewReader(makeTar(t, tc.entry, tc.content)), dst); err == nil {
				t.Fatalf("expected import error")
			}
			if dst.Has(goodID) {
				t.Fatalf("rejected entry was committed")
			}
		})
	}
}

func makeTar(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  time.Unix(0, 0).UTC(),
		Typeflag: tar.TypeReg,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
