// Package graph stores content trees as property graphs.
//
// Every node becomes one vertex and every parent/child link one do_child edge carrying
// the child's position among its siblings. Structural queries walk edges: children are
// the edge targets of a vertex ordered by position, and a subtree is expanded level by
// level until the requested depth is reached.
//
// # Labels
//
// Vertices carry a label set used for lookups that do not start from a known vertex:
//
//	Root | Collection | File     the node's role; the root also carries Collection
//	object:<digital object id>   owner
//	view:<view name>             view
//
// # Generations
//
// A graph database offers no cheap transaction around tens of thousands of inserts, so
// [GraphStore] replaces a view with a shadow write. All vertices and edges of the new
// tree are written under a fresh [github.com/surrealdb/dataorg/pkg/models.Generation].
// Only when the last batch is stored is the view pointer swapped to the new generation;
// the old generation is deleted afterwards. Reads resolve the view pointer first and
// treat vertices of any other generation as absent, so a reader observes either the old
// tree or the new one. A failed or cancelled write deletes its shadow generation and
// leaves the view untouched.
//
// The physical operations are provided by a [Driver]. The SurrealDB driver lives in
// package surrealdb, the in-process go-memdb driver in package memgraph.
package graph
