// Package textcrdt implements an operation-based CRDT for collaborative
// plain-text editing with O(log n + c) local insert, delete, and
// index<->position translation, where n is the total number of character
// nodes (including tombstones) and c is the maximum concurrency width.
//
// The replicated value is an ordered sequence of characters. Replicas
// converge on the same sequence after observing the same causally ordered
// set of operations (strong eventual consistency).
//
// Three data structures cooperate to provide this bound over a logically
// unbalanced CRDT tree:
//
//   - the interleaving tree (interleave.go): the canonical structure that
//     defines the total order of characters across replicas;
//   - the balanced index (index.go): an AVL tree over the same nodes,
//     augmented with subtree present-counts, giving O(log n) index<->node
//     queries;
//   - the Split-Append List Manager, or SALM (salm.go): an auxiliary
//     AVL-based structure that locates the leftmost/rightmost descendant
//     of any interleaving-tree spine in O(log n), so insertion never has
//     to walk the unbalanced interleaving tree.
//
// Replica (replica.go) ties these together behind a text-editor-shaped
// API: Insert, Delete, Length, String, PositionAt, IndexOf.
package textcrdt
