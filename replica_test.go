package textcrdt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestReplica(net *Network, name string) *Replica {
	return NewReplica(net.Attach(name))
}

func TestInsertAndStringSingleReplica(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")

	require.NoError(t, r.Insert(0, "hello"))
	require.Equal(t, "hello", r.String())
	require.Equal(t, 5, r.Length())
	require.NoError(t, r.CheckInvariants())

	require.NoError(t, r.Insert(5, " world"))
	require.Equal(t, "hello world", r.String())

	require.NoError(t, r.Insert(5, ","))
	require.Equal(t, "hello, world", r.String())
	require.NoError(t, r.CheckInvariants())
}

func TestDeleteSingleReplica(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")
	require.NoError(t, r.Insert(0, "hello world"))

	require.NoError(t, r.Delete(5, 6))
	require.Equal(t, "hello", r.String())
	require.NoError(t, r.CheckInvariants())

	// Indices count present characters only, so deleting the remaining
	// five empties the document even though tombstones remain.
	require.NoError(t, r.Delete(0, 5))
	require.Equal(t, "", r.String())
	require.Equal(t, 0, r.Length())
}

func TestInsertOutOfBounds(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")
	err := r.Insert(1, "x")
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestDeleteOutOfBounds(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")
	require.NoError(t, r.Insert(0, "hi"))
	err := r.Delete(1, 5)
	require.ErrorIs(t, err, ErrIndexOutOfBounds)
}

func TestPositionAtAndIndexOfRoundTrip(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")
	require.NoError(t, r.Insert(0, "abcde"))

	for i := 0; i < r.Length(); i++ {
		pos, err := r.PositionAt(i)
		require.NoError(t, err)
		gotIndex, present, err := r.IndexOf(pos)
		require.NoError(t, err)
		require.True(t, present)
		require.Equal(t, i, gotIndex)
	}
}

func TestIndexOfTombstonedNodeStillResolves(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")
	require.NoError(t, r.Insert(0, "abcde"))
	pos, err := r.PositionAt(2)
	require.NoError(t, err)

	require.NoError(t, r.Delete(2, 1))
	idx, present, err := r.IndexOf(pos)
	require.NoError(t, err)
	require.False(t, present)
	require.Equal(t, 2, idx)
}

func TestIndexOfUnknownID(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")
	_, _, err := r.IndexOf("does-not-exist")
	require.ErrorIs(t, err, ErrUnknownID)
}

// TestTwoReplicasConvergeSequentially has two replicas edit one after
// the other through the same Network, whose synchronous broadcast fans
// every op out to every attached replica, so each edit is seen by both
// before the next one is made.
func TestTwoReplicasConvergeSequentially(t *testing.T) {
	net := NewNetwork()
	a := newTestReplica(net, "a")
	b := newTestReplica(net, "b")

	require.NoError(t, a.Insert(0, "hello"))
	require.Equal(t, "hello", b.String(), "b should see a's insert via the echo broadcast")

	require.NoError(t, b.Insert(5, " world"))
	require.Equal(t, a.String(), b.String())

	if diff := cmp.Diff(a.String(), b.String()); diff != "" {
		t.Fatalf("replicas diverged (-a +b):\n%s", diff)
	}
	require.NoError(t, a.CheckInvariants())
	require.NoError(t, b.CheckInvariants())
}

// TestConcurrentInsertsAtSamePositionConverge covers two replicas both
// inserting at index 1, the boundary between two existing characters,
// one right after the other. Since our Network always echoes
// synchronously and in the same global order to every replica, both
// ultimately observe the same two ops in the same order and must agree
// on the final text and its length -- this is strong eventual
// consistency, not true network-partition concurrency, which the
// in-memory runtime doesn't model.
func TestConcurrentInsertsAtSamePositionConverge(t *testing.T) {
	net := NewNetwork()
	a := newTestReplica(net, "a")
	b := newTestReplica(net, "b")

	require.NoError(t, a.Insert(0, "ac"))
	require.NoError(t, a.Insert(1, "X"))
	require.NoError(t, b.Insert(1, "Y"))

	require.Equal(t, a.String(), b.String())
	require.Equal(t, 4, a.Length())
	require.NoError(t, a.CheckInvariants())
	require.NoError(t, b.CheckInvariants())
}

func TestEventsFireOnApply(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")

	var inserts []InsertEvent
	var deletes []DeleteEvent
	r.OnInsert(func(e InsertEvent) { inserts = append(inserts, e) })
	r.OnDelete(func(e DeleteEvent) { deletes = append(deletes, e) })

	require.NoError(t, r.Insert(0, "ab"))
	require.Len(t, inserts, 2)

	require.NoError(t, r.Delete(0, 1))
	require.Len(t, deletes, 1)
	require.Equal(t, []rune{'a'}, deletes[0].DeletedValues)
}

func TestSaveLoadNotImplemented(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")
	_, err := r.Save()
	require.ErrorIs(t, err, ErrNotImplemented)
	require.ErrorIs(t, r.Load(nil), ErrNotImplemented)
}

func TestReceivePrimitiveRejectsUnknownParent(t *testing.T) {
	net := NewNetwork()
	r := newTestReplica(net, "a")
	data, err := MarshalOp(&InsertOp{ID: "x", ParentID: "ghost", IsLeftChild: false, Value: 'z'})
	require.NoError(t, err)
	err = r.ReceivePrimitive(data, Meta{})
	require.ErrorIs(t, err, ErrUnknownID)
}
