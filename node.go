package textcrdt

// rootID is the stable id of the sentinel root node. No runtime-minted id
// can ever collide with it: getUID implementations are expected to return
// non-empty strings (see runtime.go).
const rootID = ""

// Node is a single character, tombstoned or not, ever inserted into the
// sequence. Every node (other than the root sentinel) carries its
// interleaving-tree anchor (ParentID + IsLeftChild), and is linked into
// two auxiliary AVL structures the directory never exposes directly: the
// balanced index (b* fields) and two SALM spine memberships (ls*/rs*
// fields, one for the left spine, one for the right spine it may belong
// to). All non-id fields are mutated in place; a Node's identity is its
// ID for the lifetime of the replica.
type Node struct {
	ID          string
	Value       rune
	ParentID    string
	IsLeftChild bool
	IsPresent   bool

	// LeftChildren and RightChildren are this node's interleaving-tree
	// children, kept sorted ascending by ID so every replica that has
	// seen the same set of children orders them identically.
	LeftChildren  []*Node
	RightChildren []*Node

	// Balanced-index (component B) links. bFactor is the AVL balance
	// factor in {-1, 0, +1}; bCount is the number of present nodes in
	// the balanced subtree rooted here, including self.
	bParent *Node
	bLeft   *Node
	bRight  *Node
	bFactor int8
	bCount  int

	// Left-SALM membership (component C): this node's position in the
	// AVL tree tracking the spine it belongs to on the left side.
	lsParent *Node
	lsLeft   *Node
	lsRight  *Node
	lsHeight int8

	// Right-SALM membership, symmetric to the left one.
	rsParent *Node
	rsLeft   *Node
	rsRight  *Node
	rsHeight int8
}

// newRoot constructs the sentinel root node. The root is never present and
// has no value; it exists purely as the anchor for index 0 and the
// reference point for canonical inorder.
func newRoot() *Node {
	return &Node{ID: rootID}
}

// directory owns every node ever created by a replica, keyed by id. All
// pointers held by the interleaving tree, balanced index, and SALM are
// non-owning references into this map.
type directory struct {
	nodes map[string]*Node
}

func newDirectory() *directory {
	root := newRoot()
	d := &directory{nodes: make(map[string]*Node)}
	d.nodes[rootID] = root
	return d
}

func (d *directory) lookup(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

func (d *directory) root() *Node {
	return d.nodes[rootID]
}

// create allocates and registers a new node. It does not link the node
// into any of the three structures; that is the caller's job (see
// interleave.go's splice and index.go's attach).
func (d *directory) create(id string, value rune, parentID string, isLeftChild bool) *Node {
	n := &Node{
		ID:          id,
		Value:       value,
		ParentID:    parentID,
		IsLeftChild: isLeftChild,
		IsPresent:   true,
	}
	d.nodes[id] = n
	return n
}
