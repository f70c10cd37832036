package textcrdt

import "fmt"

// InsertEvent is emitted after a received insert is applied.
type InsertEvent struct {
	StartIndex int
	Count      int
	Meta       Meta
}

// DeleteEvent is emitted after a received delete is applied.
type DeleteEvent struct {
	StartIndex    int
	Count         int
	DeletedValues []rune
	Meta          Meta
}

// Replica is a replicated plain-text sequence owned by one site. It
// translates Insert/Delete calls into operation messages handed to a
// Runtime, and applies every message it receives back (including its own,
// echoed) to the interleaving tree, balanced index, and SALM in lockstep,
// emitting events synchronously as it goes.
type Replica struct {
	dir       *directory
	index     *BalancedIndex
	leftSALM  *SALM
	rightSALM *SALM
	runtime   Runtime

	onInsert func(InsertEvent)
	onDelete func(DeleteEvent)
}

// binder lets a Runtime register the Replica being constructed around it
// for inbound delivery, without the core depending on any concrete
// transport (see runtime.go's InMemoryRuntime).
type binder interface {
	bind(r *Replica)
}

func (rt *InMemoryRuntime) bind(r *Replica) {
	rt.network.register(rt.name, r)
}

// NewReplica creates an empty replica backed by rt. The interleaving
// tree, balanced index, and both SALMs all start out containing just the
// sentinel root.
func NewReplica(rt Runtime) *Replica {
	dir := newDirectory()
	root := dir.root()
	idx := newBalancedIndex(root)
	leftSALM := newLeftSALM()
	rightSALM := newRightSALM()
	leftSALM.Create(root)
	rightSALM.Create(root)

	r := &Replica{
		dir:       dir,
		index:     idx,
		leftSALM:  leftSALM,
		rightSALM: rightSALM,
		runtime:   rt,
	}
	if b, ok := rt.(binder); ok {
		b.bind(r)
	}
	return r
}

// OnInsert registers a callback invoked after every applied insert.
func (r *Replica) OnInsert(f func(InsertEvent)) { r.onInsert = f }

// OnDelete registers a callback invoked after every applied delete.
func (r *Replica) OnDelete(f func(DeleteEvent)) { r.onDelete = f }

func (r *Replica) emitInsert(e InsertEvent) {
	if r.onInsert != nil {
		r.onInsert(e)
	}
}

func (r *Replica) emitDelete(e DeleteEvent) {
	if r.onDelete != nil {
		r.onDelete(e)
	}
}

// Length is the number of present characters, O(1).
func (r *Replica) Length() int {
	return r.index.Length()
}

// String concatenates the present characters in canonical order, O(n
// present). It prunes any subtree whose bCount is zero, so deletion-heavy
// documents don't pay for their own tombstones here.
func (r *Replica) String() string {
	var buf []rune
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || n.bCount == 0 {
			return
		}
		walk(n.bLeft)
		if n.IsPresent {
			buf = append(buf, n.Value)
		}
		walk(n.bRight)
	}
	walk(r.index.root)
	return string(buf)
}

// PositionAt returns the stable id of the node at index i. The id
// remains a valid argument to IndexOf for the node's lifetime, even
// across concurrent edits elsewhere -- ids never get reassigned or
// recycled as surrounding text changes.
func (r *Replica) PositionAt(i int) (string, error) {
	n, err := r.index.IndexToNode(i)
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// IndexOf returns the node's current index and whether it is present.
// Unlike PositionAt, it accepts the id of a tombstoned node, returning
// its would-be index and isPresent=false.
func (r *Replica) IndexOf(position string) (int, bool, error) {
	n, ok := r.dir.lookup(position)
	if !ok {
		return 0, false, unknownID(position)
	}
	idx, present := r.index.NodeToIndex(n)
	return idx, present, nil
}

// Insert splits s into one operation per character and sends them in
// order. Only the first character's anchor requires a balanced-index
// lookup (the node at i-1, or the root sentinel for i==0); every later
// character in the same call anchors off the one immediately before it,
// since a freshly minted node never yet has right children and so always
// qualifies as a right-child anchor. This makes Insert's correctness
// independent of whether the runtime echoes synchronously.
func (r *Replica) Insert(i int, s string) error {
	chars := []rune(s)
	if len(chars) == 0 {
		return nil
	}
	length := r.Length()
	if i < 0 || i > length {
		return outOfBounds(i, length)
	}

	var left *Node
	if i == 0 {
		left = r.dir.root()
	} else {
		var err error
		left, err = r.index.IndexToNode(i - 1)
		if err != nil {
			return err
		}
	}

	var firstParentID string
	var firstIsLeftChild bool
	if len(left.RightChildren) == 0 {
		firstParentID, firstIsLeftChild = left.ID, false
	} else {
		succ := r.index.NextNode(left)
		if succ == nil {
			return invariantViolation("nextNode undefined for a node with right children")
		}
		firstParentID, firstIsLeftChild = succ.ID, true
	}

	ops := make([]*InsertOp, len(chars))
	for k, ch := range chars {
		id := r.runtime.GetUID()
		if k == 0 {
			ops[k] = &InsertOp{ID: id, ParentID: firstParentID, IsLeftChild: firstIsLeftChild, Value: ch}
		} else {
			ops[k] = &InsertOp{ID: id, ParentID: ops[k-1].ID, IsLeftChild: false, Value: ch}
		}
	}

	for _, op := range ops {
		data, err := MarshalOp(op)
		if err != nil {
			return err
		}
		if err := r.runtime.SendPrimitive(data); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes count present characters starting at index i. It looks
// up every target id against the current (pre-delete) state before
// sending anything, then sends the delete operations from right to
// left, so the batch's correctness never depends on deletes the runtime
// has or hasn't echoed back yet.
func (r *Replica) Delete(i, count int) error {
	if count <= 0 {
		return nil
	}
	length := r.Length()
	if i < 0 || i+count > length {
		return outOfBounds(i, length)
	}

	targets := make([]string, count)
	for k := 0; k < count; k++ {
		n, err := r.index.IndexToNode(i + k)
		if err != nil {
			return err
		}
		targets[k] = n.ID
	}

	for k := count - 1; k >= 0; k-- {
		data, err := MarshalOp(&DeleteOp{ID: targets[k]})
		if err != nil {
			return err
		}
		if err := r.runtime.SendPrimitive(data); err != nil {
			return err
		}
	}
	return nil
}

// ReceivePrimitive is the inbound callback a Runtime invokes for every
// message it delivers, local or remote. It is all-or-nothing: an error
// aborts before any event is emitted.
func (r *Replica) ReceivePrimitive(data []byte, meta Meta) error {
	op, err := UnmarshalOp(data)
	if err != nil {
		return err
	}
	switch v := op.(type) {
	case *InsertOp:
		return r.applyInsert(v, meta)
	case *DeleteOp:
		return r.applyDelete(v, meta)
	default:
		return fmt.Errorf("textcrdt: unhandled op type %T", op)
	}
}

// applyInsert runs the full remote-message control flow: interleaving
// tree splice, balanced-index attach and rebalance (via the SALM for
// predecessor/successor lookup), SALM membership update, then event
// emission.
func (r *Replica) applyInsert(op *InsertOp, meta Meta) error {
	if _, exists := r.dir.lookup(op.ID); exists {
		return nil
	}
	parent, ok := r.dir.lookup(op.ParentID)
	if !ok {
		return unknownID(op.ParentID)
	}

	node := r.dir.create(op.ID, op.Value, op.ParentID, op.IsLeftChild)
	k := spliceIntoParent(parent, node)

	siblingsLen := len(parent.RightChildren)
	if node.IsLeftChild {
		siblingsLen = len(parent.LeftChildren)
	}

	r.index.insertNode(parent, node, k, r.leftSALM, r.rightSALM)
	updateSALMsOnInsert(parent, node, k, siblingsLen, r.leftSALM, r.rightSALM)

	startIndex, _ := r.index.NodeToIndex(node)
	r.emitInsert(InsertEvent{StartIndex: startIndex, Count: 1, Meta: meta})
	return nil
}

// applyDelete tombstones the target node (idempotent: a repeat delete of
// an already-tombstoned node is silently ignored, not an error) and
// decrements present-counts up the balanced index.
func (r *Replica) applyDelete(op *DeleteOp, meta Meta) error {
	node, ok := r.dir.lookup(op.ID)
	if !ok {
		return unknownID(op.ID)
	}
	if !node.IsPresent {
		return nil
	}
	startIndex, _ := r.index.NodeToIndex(node)
	deletedValue := node.Value
	r.index.deleteNode(node)
	r.emitDelete(DeleteEvent{StartIndex: startIndex, Count: 1, DeletedValues: []rune{deletedValue}, Meta: meta})
	return nil
}

// Save is not part of the core; implementers may add a straightforward
// serialization of (nodes, parent, side, value, isPresent) re-linking on
// load, but none is wired in here.
func (r *Replica) Save() ([]byte, error) {
	return nil, ErrNotImplemented
}

// Load is the Save counterpart; see Save.
func (r *Replica) Load(data []byte) error {
	return ErrNotImplemented
}
