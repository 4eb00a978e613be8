// Package surrealdb provides the SurrealDB realisation of [github.com/surrealdb/dataorg/pkg/store/graph.Driver].
//
// Vertices are records of the do_node table keyed by their
// [github.com/surrealdb/dataorg/pkg/models.VertexID], which marshals to a SurrealDB
// RecordID through its CBOR methods. Parent/child links are do_child relation records
// created with INSERT RELATION, carrying the child position and the generation. View
// pointers live in do_view under the array id [digital object, view].
//
// # Connection
//
// [Open] builds the connection by hand instead of using an endpoint string so that the
// surrealcbor codec is used for both directions; typed ids and NONE values do not round
// trip with the default codec.
//
// # Query safety
//
// Every statement is parameterised. Values never reach SurrealQL through string
// formatting; only table names and the optional LIMIT clause are fixed in the code.
//
// # Consistency
//
// Each driver call is one Query RPC and therefore one SurrealDB transaction. Atomic view
// replacement across many batches is provided one level up by the generation swap in
// package graph.
package surrealdb
