package localfs

import (
	"os"
	"testing"

	"xdao.co/zkcred/journal"
	"xdao.co/zkcred/journal/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunJournalConformance(t, func(t *testing.T) journal.Journal {
		t.Helper()
		j, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return j
	})
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	j, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := testkit.Output(0x42, 7).Encode()
	id, err := j.Commit(orig)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// Corrupt the stored entry out-of-band.
	path := j.objectPath(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, testkit.Output(0x42, 8).Encode(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := j.Get(id); err != journal.ErrCIDMismatch {
		t.Fatalf("Get mismatch: got %v want %v", err, journal.ErrCIDMismatch)
	}
	if _, err := j.Commit(orig); err != journal.ErrImmutable {
		t.Fatalf("Commit after corruption: got %v want %v", err, journal.ErrImmutable)
	}
}

func TestLocalFS_Reopen(t *testing.T) {
	dir := t.TempDir()
	j, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	out := testkit.Output(0x10, 1)
	id, err := journal.CommitOutput(j, out)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	reopened, _, err := journal.Open("localfs", map[string]string{"dir": dir})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	ids, err := reopened.List(out.Subject)
	if err != nil || len(ids) != 1 || ids[0] != id {
		t.Fatalf("List after reopen: %v %v", ids, err)
	}
	if _, _, err := journal.Open("localfs", nil); err == nil {
		t.Fatalf("Open without dir should fail")
	}
}

func TestNew_RequiresRoot(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("New(\"\") should fail")
	}
}
