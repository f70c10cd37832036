package textcrdt

import "fmt"

// CheckInvariants walks the whole replica and verifies, from scratch,
// every structural invariant the three cooperating structures must
// maintain: balanced-index counts and AVL balance, canonical-order
// agreement between the interleaving tree and the balanced index, and
// SALM spine correctness. It is O(n) and meant for tests, not the hot
// path.
func (r *Replica) CheckInvariants() error {
	if _, err := checkIndexShape(r.index.root); err != nil {
		return err
	}
	if err := checkInorderAgreement(r); err != nil {
		return err
	}
	if err := checkSALMs(r); err != nil {
		return err
	}
	return nil
}

// checkIndexShape recomputes bCount/height/bFactor bottom-up and compares
// against what's stored, catching any drift a buggy rotation would leave
// behind.
func checkIndexShape(n *Node) (height int, err error) {
	if n == nil {
		return -1, nil
	}
	lh, err := checkIndexShape(n.bLeft)
	if err != nil {
		return 0, err
	}
	rh, err := checkIndexShape(n.bRight)
	if err != nil {
		return 0, err
	}
	wantCount := presentCount(n) + count(n.bLeft) + count(n.bRight)
	if n.bCount != wantCount {
		return 0, invariantViolation(fmt.Sprintf("node %q: bCount=%d, want %d", n.ID, n.bCount, wantCount))
	}
	wantFactor := int8(rh - lh)
	if n.bFactor != wantFactor {
		return 0, invariantViolation(fmt.Sprintf("node %q: bFactor=%d, want %d", n.ID, n.bFactor, wantFactor))
	}
	if wantFactor > 1 || wantFactor < -1 {
		return 0, invariantViolation(fmt.Sprintf("node %q: AVL balance violated (bFactor %d)", n.ID, wantFactor))
	}
	h := lh
	if rh > h {
		h = rh
	}
	return h + 1, nil
}

// checkInorderAgreement asserts the balanced index's inorder traversal
// (via bLeft/bRight) visits the same node sequence, in the same order,
// as the interleaving tree's canonical inorder.
func checkInorderAgreement(r *Replica) error {
	var fromIndex []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		walk(n.bLeft)
		if n.ID != rootID {
			fromIndex = append(fromIndex, n.ID)
		}
		walk(n.bRight)
	}
	walk(r.index.root)

	var fromTree []string
	canonicalInorder(r.dir.root(), true, func(n *Node) {
		fromTree = append(fromTree, n.ID)
	})

	if len(fromIndex) != len(fromTree) {
		return invariantViolation(fmt.Sprintf("balanced index has %d nodes, interleaving tree has %d", len(fromIndex), len(fromTree)))
	}
	for i := range fromIndex {
		if fromIndex[i] != fromTree[i] {
			return invariantViolation(fmt.Sprintf("canonical order mismatch at position %d: index has %q, tree has %q", i, fromIndex[i], fromTree[i]))
		}
	}
	return nil
}

// checkSALMs verifies, for every node with at least one child on a side,
// that the side's SALM correctly reports the leftmost/rightmost
// descendant reachable by following that side's children in the
// interleaving tree.
func checkSALMs(r *Replica) error {
	var err error
	canonicalInorder(r.dir.root(), true, func(n *Node) {
		if err != nil {
			return
		}
		if len(n.LeftChildren) > 0 {
			want := leftmostDescendant(n)
			got := r.leftSALM.GetEnd(n)
			if got != want {
				err = invariantViolation(fmt.Sprintf("leftSALM.GetEnd(%q) = %q, want %q", n.ID, got.ID, want.ID))
				return
			}
		}
		if len(n.RightChildren) > 0 {
			want := rightmostDescendant(n)
			got := r.rightSALM.GetEnd(n)
			if got != want {
				err = invariantViolation(fmt.Sprintf("rightSALM.GetEnd(%q) = %q, want %q", n.ID, got.ID, want.ID))
				return
			}
		}
	})
	return err
}

// leftmostDescendant follows LeftChildren[0] until it can't anymore -- the
// structural definition of "leftmost descendant along the left spine"
// that the left SALM is meant to track.
func leftmostDescendant(n *Node) *Node {
	cur := n
	for len(cur.LeftChildren) > 0 {
		cur = cur.LeftChildren[0]
	}
	return cur
}

// rightmostDescendant is the mirror image, following RightChildren[last].
func rightmostDescendant(n *Node) *Node {
	cur := n
	for len(cur.RightChildren) > 0 {
		cur = cur.RightChildren[len(cur.RightChildren)-1]
	}
	return cur
}
