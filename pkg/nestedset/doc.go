// Package nestedset encodes content trees as nested-set records and rebuilds trees from them.
//
// # Encoding
//
// [Writer] walks a [github.com/surrealdb/dataorg/pkg/models.FileTree] once, visiting every
// node on arrival and on departure. A counter advances by the step size (100 by default)
// at every visit, so each node receives an arrival step and a departure step:
//
//	root     100 ........................... 800
//	a.txt        200 .. 300
//	sub                     400 ...... 700
//	b.txt                       500 600
//
// A node N lies below P exactly when P.arrived < N.arrived < N.departed < P.departed,
// which turns subtree and child queries into numeric range predicates. Records are only
// complete at departure, so they are handed to the [Sink] in departure order and in
// batches of at most 4000 records.
//
// # Reconstruction
//
// [BuildTree] rebuilds a tree from records sorted by arrival step in one pass with a
// stack: every record closes the spans on top of the stack that ended before it, then
// becomes the last child of the new top. A whole view must start with a collection;
// [BuildSubTree] also accepts a file as the first record. [WithinDepth] restricts a
// record list to a bounded subtree before reconstruction.
//
// Both halves are backend agnostic. The relational store in
// [github.com/surrealdb/dataorg/pkg/store/postgres] persists records as rows and feeds
// range query results back into [BuildTree] and [BuildSubTree].
package nestedset
