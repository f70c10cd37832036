package textcrdt

// salmSide picks which of a Node's two independent SALM memberships a
// SALM operates on: the left-spine list (tracking leftmost descendants)
// or the right-spine list (tracking rightmost descendants). Both sides
// share the same algorithm; only the struct fields they touch differ.
type salmSide int

const (
	salmLeftSide salmSide = iota
	salmRightSide
)

func salmParentOf(n *Node, side salmSide) *Node {
	if side == salmLeftSide {
		return n.lsParent
	}
	return n.rsParent
}

func salmSetParentOf(n *Node, side salmSide, p *Node) {
	if side == salmLeftSide {
		n.lsParent = p
	} else {
		n.rsParent = p
	}
}

func salmLeftOf(n *Node, side salmSide) *Node {
	if side == salmLeftSide {
		return n.lsLeft
	}
	return n.rsLeft
}

func salmSetLeftOf(n *Node, side salmSide, c *Node) {
	if side == salmLeftSide {
		n.lsLeft = c
	} else {
		n.rsLeft = c
	}
}

func salmRightOf(n *Node, side salmSide) *Node {
	if side == salmLeftSide {
		return n.lsRight
	}
	return n.rsRight
}

func salmSetRightOf(n *Node, side salmSide, c *Node) {
	if side == salmLeftSide {
		n.lsRight = c
	} else {
		n.rsRight = c
	}
}

func salmHeightOf(n *Node, side salmSide) int8 {
	if n == nil {
		return -1
	}
	if side == salmLeftSide {
		return n.lsHeight
	}
	return n.rsHeight
}

func salmSetHeightOf(n *Node, side salmSide, h int8) {
	if side == salmLeftSide {
		n.lsHeight = h
	} else {
		n.rsHeight = h
	}
}

func salmUpdateHeight(n *Node, side salmSide) {
	lh := salmHeightOf(salmLeftOf(n, side), side)
	rh := salmHeightOf(salmRightOf(n, side), side)
	h := lh
	if rh > h {
		h = rh
	}
	salmSetHeightOf(n, side, h+1)
}

// SALM is the Split-Append List Manager: an AVL tree per list, with no
// explicit keys -- position is purely structural. It supports create,
// append, getEnd and an AVL join/split based split. A SALM value is a
// thin, stateless wrapper: membership lives entirely on the Node (ls*/
// rs* fields), so there is no per-list root registry to keep in sync --
// a list's identity is just "whatever you reach by climbing parent
// pointers from any of its members".
type SALM struct {
	side salmSide
}

func newLeftSALM() *SALM  { return &SALM{side: salmLeftSide} }
func newRightSALM() *SALM { return &SALM{side: salmRightSide} }

func (s *SALM) resetSingleton(v *Node) {
	salmSetParentOf(v, s.side, nil)
	salmSetLeftOf(v, s.side, nil)
	salmSetRightOf(v, s.side, nil)
	salmSetHeightOf(v, s.side, 0)
}

// Create starts a new singleton list containing v.
func (s *SALM) Create(v *Node) {
	s.resetSingleton(v)
}

// GetEnd returns the last element of the list containing v: climb to the
// list's root, then descend rightmost. O(log n).
func (s *SALM) GetEnd(v *Node) *Node {
	cur := v
	for salmParentOf(cur, s.side) != nil {
		cur = salmParentOf(cur, s.side)
	}
	for salmRightOf(cur, s.side) != nil {
		cur = salmRightOf(cur, s.side)
	}
	return cur
}

// rightmostOf descends from an explicit (possibly parent-less) root,
// without climbing -- used while a subtree is held only in a local
// variable during split/join, before it is linked back under a parent.
func (s *SALM) rightmostOf(root *Node) *Node {
	cur := root
	for salmRightOf(cur, s.side) != nil {
		cur = salmRightOf(cur, s.side)
	}
	return cur
}

// rotateLeft and rotateRight are the standard AVL rotations, maintained
// over the side's link set and height field.
func (s *SALM) rotateLeft(x *Node) *Node {
	y := salmRightOf(x, s.side)
	salmSetRightOf(x, s.side, salmLeftOf(y, s.side))
	if salmLeftOf(y, s.side) != nil {
		salmSetParentOf(salmLeftOf(y, s.side), s.side, x)
	}
	salmSetParentOf(y, s.side, salmParentOf(x, s.side))
	salmSetLeftOf(y, s.side, x)
	salmSetParentOf(x, s.side, y)
	salmUpdateHeight(x, s.side)
	salmUpdateHeight(y, s.side)
	return y
}

func (s *SALM) rotateRight(x *Node) *Node {
	y := salmLeftOf(x, s.side)
	salmSetLeftOf(x, s.side, salmRightOf(y, s.side))
	if salmRightOf(y, s.side) != nil {
		salmSetParentOf(salmRightOf(y, s.side), s.side, x)
	}
	salmSetParentOf(y, s.side, salmParentOf(x, s.side))
	salmSetRightOf(y, s.side, x)
	salmSetParentOf(x, s.side, y)
	salmUpdateHeight(x, s.side)
	salmUpdateHeight(y, s.side)
	return y
}

// rebalance recomputes n's height and, if it is out of AVL balance,
// performs the appropriate single or double rotation, returning whatever
// node now occupies n's former position. A no-op (returns n unchanged)
// when n is already balanced.
func (s *SALM) rebalance(n *Node) *Node {
	salmUpdateHeight(n, s.side)
	bf := salmHeightOf(salmRightOf(n, s.side), s.side) - salmHeightOf(salmLeftOf(n, s.side), s.side)
	if bf > 1 {
		r := salmRightOf(n, s.side)
		if salmHeightOf(salmLeftOf(r, s.side), s.side) > salmHeightOf(salmRightOf(r, s.side), s.side) {
			salmSetRightOf(n, s.side, s.rotateRight(r))
		}
		return s.rotateLeft(n)
	}
	if bf < -1 {
		l := salmLeftOf(n, s.side)
		if salmHeightOf(salmRightOf(l, s.side), s.side) > salmHeightOf(salmLeftOf(l, s.side), s.side) {
			salmSetLeftOf(n, s.side, s.rotateLeft(l))
		}
		return s.rotateRight(n)
	}
	return n
}

// climbAndRebalance walks up from n (a node whose child link just
// changed), rebalancing and fixing up parent links at every level, all
// the way to the root of whatever list n belongs to.
func (s *SALM) climbAndRebalance(n *Node) {
	cur := n
	for cur != nil {
		parent := salmParentOf(cur, s.side)
		newRoot := s.rebalance(cur)
		if parent != nil {
			if salmLeftOf(parent, s.side) == cur {
				salmSetLeftOf(parent, s.side, newRoot)
			} else if salmRightOf(parent, s.side) == cur {
				salmSetRightOf(parent, s.side, newRoot)
			}
		}
		cur = parent
	}
}

// Append appends v after the last element of the list containing e; v
// becomes the new end.
func (s *SALM) Append(e, v *Node) {
	end := s.GetEnd(e)
	s.resetSingleton(v)
	salmSetRightOf(end, s.side, v)
	salmSetParentOf(v, s.side, end)
	s.climbAndRebalance(end)
}

// join concatenates L, k, R (in that inorder position) into a single AVL
// tree and returns its root, using the join-based algorithm: when the
// two heights are close, k becomes the new root directly; otherwise
// descend the taller side's spine until heights are compatible, splice
// in a join of the remainder, and rebalance on the way back up. At most
// one rotation happens per level.
func (s *SALM) join(l, k, r *Node) *Node {
	lh, rh := salmHeightOf(l, s.side), salmHeightOf(r, s.side)
	var root *Node
	switch {
	case lh > rh+1:
		root = s.joinRightAVL(l, k, r)
	case rh > lh+1:
		root = s.joinLeftAVL(l, k, r)
	default:
		salmSetLeftOf(k, s.side, l)
		salmSetRightOf(k, s.side, r)
		if l != nil {
			salmSetParentOf(l, s.side, k)
		}
		if r != nil {
			salmSetParentOf(r, s.side, k)
		}
		salmUpdateHeight(k, s.side)
		root = k
	}
	salmSetParentOf(root, s.side, nil)
	return root
}

// joinRightAVL handles height(l) > height(r)+1: descend l's right spine
// until a subtree is found whose height is compatible with r, join there,
// and rebalance each ancestor on the way back up.
func (s *SALM) joinRightAVL(l, k, r *Node) *Node {
	lr := salmRightOf(l, s.side)
	var tPrime *Node
	if salmHeightOf(lr, s.side) <= salmHeightOf(r, s.side)+1 {
		tPrime = s.join(lr, k, r)
	} else {
		tPrime = s.joinRightAVL(lr, k, r)
	}
	salmSetRightOf(l, s.side, tPrime)
	if tPrime != nil {
		salmSetParentOf(tPrime, s.side, l)
	}
	return s.rebalance(l)
}

// joinLeftAVL is the mirror image of joinRightAVL, for height(r) > height(l)+1.
func (s *SALM) joinLeftAVL(l, k, r *Node) *Node {
	rl := salmLeftOf(r, s.side)
	var tPrime *Node
	if salmHeightOf(rl, s.side) <= salmHeightOf(l, s.side)+1 {
		tPrime = s.join(l, k, rl)
	} else {
		tPrime = s.joinLeftAVL(l, k, rl)
	}
	salmSetLeftOf(r, s.side, tPrime)
	if tPrime != nil {
		salmSetParentOf(tPrime, s.side, r)
	}
	return s.rebalance(r)
}

// Split splits the list containing v into [start, v] and (v, end]: walk
// from v to the root recording the path, rebuild each side with join,
// and re-append v (excluded by construction) to the left half.
func (s *SALM) Split(v *Node) {
	l := salmLeftOf(v, s.side)
	r := salmRightOf(v, s.side)
	if l != nil {
		salmSetParentOf(l, s.side, nil)
	}
	if r != nil {
		salmSetParentOf(r, s.side, nil)
	}

	cur := v
	parent := salmParentOf(cur, s.side)
	for parent != nil {
		// join rewrites parent's own parent link, so read the next step
		// of the path before joining.
		next := salmParentOf(parent, s.side)
		if salmLeftOf(parent, s.side) == cur {
			rightOfParent := salmRightOf(parent, s.side)
			if rightOfParent != nil {
				salmSetParentOf(rightOfParent, s.side, nil)
			}
			salmSetLeftOf(parent, s.side, nil)
			salmSetRightOf(parent, s.side, nil)
			r = s.join(r, parent, rightOfParent)
		} else {
			leftOfParent := salmLeftOf(parent, s.side)
			if leftOfParent != nil {
				salmSetParentOf(leftOfParent, s.side, nil)
			}
			salmSetLeftOf(parent, s.side, nil)
			salmSetRightOf(parent, s.side, nil)
			l = s.join(leftOfParent, parent, l)
		}
		cur = parent
		parent = next
	}

	s.resetSingleton(v)
	if l == nil {
		return
	}
	end := s.rightmostOf(l)
	salmSetRightOf(end, s.side, v)
	salmSetParentOf(v, s.side, end)
	s.climbAndRebalance(end)
}

// updateSALMsOnInsert keeps both SALMs in sync with a freshly spliced
// node: at sibling index k (of siblingsLen total same-side siblings)
// under parent, the node either extends the spine it now heads, or
// starts a fresh singleton.
func updateSALMsOnInsert(parent, node *Node, k, siblingsLen int, leftSALM, rightSALM *SALM) {
	if node.IsLeftChild {
		if k == 0 {
			if siblingsLen >= 2 {
				leftSALM.Split(parent)
			}
			leftSALM.Append(parent, node)
		} else {
			leftSALM.Create(node)
		}
		rightSALM.Create(node)
		return
	}
	if k == siblingsLen-1 {
		if siblingsLen >= 2 {
			rightSALM.Split(parent)
		}
		rightSALM.Append(parent, node)
	} else {
		rightSALM.Create(node)
	}
	leftSALM.Create(node)
}
