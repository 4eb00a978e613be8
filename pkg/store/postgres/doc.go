// Package postgres stores content trees in nested-set encoding with GORM.
//
// Every node is one row of data_organization_nodes keyed by (digital object, view,
// arrival step); attributes live in data_organization_attributes. Structural queries
// are plain range predicates over the step numbers:
//
//	children:  P.arrived < arrived AND departed < P.departed AND depth = P.depth + 1
//	subtree:   P.arrived <= arrived AND departed <= P.departed
//
// The same code serves PostgreSQL ([NewPostgresStore]) and SQLite ([NewSQLiteStore]),
// the latter mainly for tests and single-user deployments.
//
// A view is replaced inside one transaction: the old rows are deleted and the new tree
// is written in batches of nestedset.DefaultBatchSize records. Readers in other
// transactions keep seeing the previous tree until the commit.
package postgres
