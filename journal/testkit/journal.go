// Package testkit holds the conformance suite every journal implementation runs.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/journal"
)

// NewJournal constructs a fresh, empty journal for a test.
// The returned journal MUST be isolated from other tests.
type NewJournal func(t *testing.T) journal.Journal

// Output builds a distinct, well-formed public output for subject byte s and index n.
func Output(s byte, n uint64) credential.PublicOutput {
	var subject credential.Subject
	for i := range subject {
		subject[i] = s
	}
	var hash [credential.HashSize]byte
	hash[0] = byte(n)
	hash[31] = s
	return credential.Assemble(subject, credential.TypeKYC, hash, 1000+n, 0)
}

func RunJournalConformance(t *testing.T, newJournal NewJournal) {
	t.Helper()

	t.Run("CommitGetRoundTrip", func(t *testing.T) {
		j := newJournal(t)
		want := Output(0xaa, 1).Encode()

		id, err := j.Commit(want)
		if err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		wantID, err := cidutil.Commitment(want)
		if err != nil {
			t.Fatalf("Commitment failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Commit CID mismatch: got %s want %s", id, wantID)
		}

		got, err := j.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
		out, err := journal.GetOutput(j, id)
		if err != nil {
			t.Fatalf("GetOutput failed: %v", err)
		}
		if out != Output(0xaa, 1) {
			t.Fatalf("GetOutput decoded %+v", out)
		}
	})

	t.Run("CommitIdempotent", func(t *testing.T) {
		j := newJournal(t)
		b := Output(0xbb, 1).Encode()

		id1, err := j.Commit(b)
		if err != nil {
			t.Fatalf("Commit(1) failed: %v", err)
		}
		id2, err := j.Commit(b)
		if err != nil {
			t.Fatalf("Commit(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Commit not idempotent: %s vs %s", id1, id2)
		}
		ids, err := j.List(Output(0xbb, 1).Subject)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(ids) != 1 {
			t.Fatalf("idempotent commit indexed %d times", len(ids))
		}
	})

	t.Run("RejectMalformed", func(t *testing.T) {
		j := newJournal(t)
		for _, b := range [][]byte{nil, make([]byte, 71), make([]byte, 73), []byte("hello, journal")} {
			_, err := j.Commit(b)
			if !credential.IsCode(err, credential.CodeMalformedOutput) {
				t.Fatalf("Commit(%d bytes): got %v want MalformedOutput", len(b), err)
			}
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		j := newJournal(t)
		b := Output(0xcc, 1).Encode()
		id, err := cidutil.Commitment(b)
		if err != nil {
			t.Fatalf("Commitment failed: %v", err)
		}
		if j.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		if _, err := j.Get(id); !journal.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}
		if _, err := j.Commit(b); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		if !j.Has(id) {
			t.Fatalf("Has returned false after Commit")
		}
	})

	t.Run("ListBySubject", func(t *testing.T) {
		j := newJournal(t)
		var want []string
		for n := uint64(0); n < 5; n++ {
			id, err := journal.CommitOutput(j, Output(0x11, n))
			if err != nil {
				t.Fatalf("Commit failed: %v", err)
			}
			want = append(want, id.String())
		}
		if _, err := journal.CommitOutput(j, Output(0x22, 0)); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}

		ids, err := j.List(Output(0x11, 0).Subject)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(ids) != len(want) {
			t.Fatalf("List returned %d ids, want %d", len(ids), len(want))
		}
		seen := map[string]bool{}
		for i, id := range ids {
			if i > 0 && ids[i-1].String() >= id.String() {
				t.Fatalf("List not sorted: %v", ids)
			}
			seen[id.String()] = true
		}
		for _, s := range want {
			if !seen[s] {
				t.Fatalf("List missing %s", s)
			}
		}

		empty, err := j.List(Output(0x33, 0).Subject)
		if err != nil || len(empty) != 0 {
			t.Fatalf("List unknown subject: %v %v", empty, err)
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		j := newJournal(t)
		var undef cid.Cid
		if j.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := j.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})
}
