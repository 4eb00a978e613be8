package models

import "fmt"

// Kind names the two node variants as they are persisted.
type Kind string

const (
	KindCollection Kind = "collection"
	KindFile       Kind = "file"
)

// ParseKind converts a stored kind string back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCollection, KindFile:
		return Kind(s), nil
	default:
		return "", ErrTreeShape.New("unknown node kind %q", s)
	}
}

// Content is the variant part of a Node. It is implemented by Collection and File only.
type Content interface {
	Kind() Kind
	content()
}

// Collection is an internal node. Its children are kept by the FileTree that owns it.
type Collection struct{}

func (Collection) Kind() Kind { return KindCollection }
func (Collection) content()   {}

// File is a leaf node referencing its bytes through a locator.
type File struct {
	Locator Locator
}

func (File) Kind() Kind { return KindFile }
func (File) content()   {}

// Node holds the properties of a single tree node. It does not reference other nodes;
// structure lives in FileTree.
type Node struct {
	// ID is assigned by the backend a node was loaded from. It is zero for nodes built in memory.
	ID          NodeID
	Name        string
	Description string
	// Depth is the number of ancestors the node has in its view. The root has depth 0.
	Depth      int
	Attributes Attributes
	Content    Content
}

// NewCollection returns a collection node with the given name.
func NewCollection(name string) Node {
	return Node{Name: name, Content: Collection{}}
}

// NewFile returns a file node with the given name and locator.
func NewFile(name string, locator Locator) Node {
	return Node{Name: name, Content: File{Locator: locator}}
}

// Kind returns the kind of the node's content. A node without content is treated as a collection.
func (n Node) Kind() Kind {
	if n.Content == nil {
		return KindCollection
	}
	return n.Content.Kind()
}

// IsCollection reports whether the node can have children.
func (n Node) IsCollection() bool {
	return n.Kind() == KindCollection
}

// Locator returns the locator of a file node and false for collections.
func (n Node) Locator() (Locator, bool) {
	if f, ok := n.Content.(File); ok {
		return f.Locator, true
	}
	return Locator{}, false
}

// Clone returns a copy of the node that shares no mutable state with n.
func (n Node) Clone() Node {
	c := n
	c.Attributes = n.Attributes.Clone()
	return c
}

// Detached returns a copy of the node stripped of its backend identity and depth.
// Detached nodes compare equal across backends.
func (n Node) Detached() Node {
	c := n.Clone()
	c.ID = NodeID{}
	c.Depth = 0
	return c
}

func (n Node) String() string {
	switch c := n.Content.(type) {
	case File:
		return fmt.Sprintf("file %q (%s)", n.Name, c.Locator)
	default:
		return fmt.Sprintf("collection %q", n.Name)
	}
}
