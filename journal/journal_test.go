package journal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/zkcred/journal"
	"xdao.co/zkcred/journal/testkit"
)

func TestMemory_Conformance(t *testing.T) {
	testkit.RunJournalConformance(t, func(t *testing.T) journal.Journal {
		return journal.NewMemory()
	})
}

func TestReplicating_Conformance(t *testing.T) {
	testkit.RunJournalConformance(t, func(t *testing.T) journal.Journal {
		return journal.Replicating{Backends: []journal.Named{
			{Name: "a", Journal: journal.NewMemory()},
			{Name: "b", Journal: journal.NewMemory()},
		}}
	})
}

func TestReplicating_WritesEveryBackend(t *testing.T) {
	a, b := journal.NewMemory(), journal.NewMemory()
	r := journal.Replicating{Backends: []journal.Named{{Name: "a", Journal: a}, {Name: "b", Journal: b}}}

	id, per, err := r.CommitAll(testkit.Output(1, 1).Encode())
	require.NoError(t, err)
	require.Equal(t, id, per["a"])
	require.Equal(t, id, per["b"])
	require.True(t, a.Has(id))
	require.True(t, b.Has(id))
}

func TestReplicating_WriteFirstFallsBackOnRead(t *testing.T) {
	primary, archive := journal.NewMemory(), journal.NewMemory()
	old, err := journal.CommitOutput(archive, testkit.Output(2, 1))
	require.NoError(t, err)

	r := journal.Replicating{
		WriteFirst: true,
		Backends:   []journal.Named{{Name: "primary", Journal: primary}, {Name: "archive", Journal: archive}},
	}
	fresh, err := journal.CommitOutput(r, testkit.Output(2, 2))
	require.NoError(t, err)
	require.True(t, primary.Has(fresh))
	require.False(t, archive.Has(fresh))

	got, err := journal.GetOutput(r, old)
	require.NoError(t, err)
	require.Equal(t, testkit.Output(2, 1), got)

	ids, err := r.List(testkit.Output(2, 0).Subject)
	require.NoError(t, err)
	require.Len(t, ids, 2)
}

func TestReplicating_NoBackends(t *testing.T) {
	_, err := journal.Replicating{}.Commit(testkit.Output(3, 1).Encode())
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	j, closeFn, err := journal.Open("memory", nil)
	require.NoError(t, err)
	require.Nil(t, closeFn)
	require.NotNil(t, j)

	_, _, err = journal.Open("nope", nil)
	require.Error(t, err)

	require.Error(t, journal.Register(journal.Backend{Name: "memory", Open: func(map[string]string) (journal.Journal, func() error, error) { return nil, nil, nil }}))
	require.Error(t, journal.Register(journal.Backend{Name: "x"}))

	var names []string
	for _, b := range journal.Backends() {
		names = append(names, b.Name)
	}
	require.Contains(t, names, "memory")
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := journal.NewMemory()
	id, err := journal.CommitOutput(m, testkit.Output(4, 1))
	require.NoError(t, err)
	b, err := m.Get(id)
	require.NoError(t, err)
	b[0] ^= 0xff
	again, err := journal.GetOutput(m, id)
	require.NoError(t, err)
	require.Equal(t, testkit.Output(4, 1), again)
}
