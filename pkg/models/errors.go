package models

import "github.com/zeebo/errs"

var (
	// ErrNotFound is returned when a NodeID or a (digital object, view) pair does not resolve.
	ErrNotFound = errs.Class("not found")

	// ErrTypeMismatch is returned when the kind of supplied node data differs from the kind
	// of the stored node, or when a child is attached to a File.
	ErrTypeMismatch = errs.Class("type mismatch")

	// ErrTreeShape is returned when flat records do not describe a well-formed tree.
	ErrTreeShape = errs.Class("tree shape")

	// ErrStorage wraps faults reported by a backing store. Nothing is retried.
	ErrStorage = errs.Class("storage failure")
)
