// Package models defines the content tree of a digital object: the node model, the
// arena-backed [FileTree], attributes, locators and node identifiers.
//
// # Node Model
//
// A [Node] carries the fields shared by every node (name, description, depth, attributes,
// and the [NodeID] assigned by a backend when the node was loaded) plus a [Content] value
// that is either a [Collection] or a [File]. Code that needs to tell the two apart does a
// type switch over [Node.Content]:
//
//	switch c := n.Content.(type) {
//	case models.Collection:
//		// may have children in its tree
//	case models.File:
//		fmt.Println(c.Locator)
//	}
//
// # Trees as arenas
//
// A [FileTree] owns its nodes in a flat slice addressed by [Index]. Every entry keeps the
// index of its parent and the ordered indices of its children, so the parent link is a
// plain lookup and attaching a node never copies or re-parents anything behind the
// caller's back. The root always lives at index 0. A tree without entries is the empty
// tree; persisting it removes the view.
//
// # Locators
//
// A [File] points at its content through a [Locator], a (scheme, value) pair. Locators
// are stored verbatim and resolved on demand through a [LocatorRegistry], which maps a
// scheme tag to a static parse/format pair. New schemes are added by registering them:
//
//	reg := models.NewLocatorRegistry()
//	_ = reg.Register(models.LocatorScheme{Tag: "s3", Parse: parseS3, Format: formatS3})
//
// # Errors
//
// The error classes [ErrNotFound], [ErrTypeMismatch], [ErrTreeShape] and [ErrStorage] are
// shared by every layer of the module. Use the class's Has method to test for them:
//
//	if models.ErrNotFound.Has(err) {
//		// the view or node does not exist
//	}
package models
