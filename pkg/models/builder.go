package models

import "fmt"

// TreeBuilder constructs a FileTree top-down by entering and leaving collections.
//
//	b := models.NewTreeBuilder("obj-1", "", "root")
//	b.AddFile("a.txt", models.MustLocate("file:///a.txt"))
//	b.EnterCollection("sub")
//	b.AddFile("b.txt", models.MustLocate("file:///sub/b.txt"))
//	b.Leave()
//	tree, err := b.Build()
//
// The first error sticks and is reported by Build.
type TreeBuilder struct {
	tree  *FileTree
	path  []Index
	err   error
	built bool
}

// NewTreeBuilder starts a tree whose root collection is named rootName.
func NewTreeBuilder(digitalObjectID, view, rootName string) *TreeBuilder {
	t, err := NewFileTree(digitalObjectID, view, NewCollection(rootName))
	return &TreeBuilder{tree: t, path: []Index{RootIndex}, err: err}
}

func (b *TreeBuilder) current() Index {
	return b.path[len(b.path)-1]
}

func (b *TreeBuilder) add(n Node) Index {
	if b.err != nil {
		return NoIndex
	}
	if b.built {
		b.err = fmt.Errorf("tree already built")
		return NoIndex
	}
	idx, err := b.tree.Add(b.current(), n)
	if err != nil {
		b.err = err
	}
	return idx
}

// AddFile adds a file to the current collection.
func (b *TreeBuilder) AddFile(name string, locator Locator, attrs ...Attribute) *TreeBuilder {
	n := NewFile(name, locator)
	for _, a := range attrs {
		n.Attributes.Set(a.Key, a.Value)
	}
	b.add(n)
	return b
}

// AddCollection adds an empty collection to the current collection without entering it.
func (b *TreeBuilder) AddCollection(name string, attrs ...Attribute) *TreeBuilder {
	n := NewCollection(name)
	for _, a := range attrs {
		n.Attributes.Set(a.Key, a.Value)
	}
	b.add(n)
	return b
}

// EnterCollection adds a collection to the current collection and makes it current.
func (b *TreeBuilder) EnterCollection(name string, attrs ...Attribute) *TreeBuilder {
	n := NewCollection(name)
	for _, a := range attrs {
		n.Attributes.Set(a.Key, a.Value)
	}
	if idx := b.add(n); idx != NoIndex {
		b.path = append(b.path, idx)
	}
	return b
}

// Leave returns to the parent of the current collection.
func (b *TreeBuilder) Leave() *TreeBuilder {
	if b.err != nil {
		return b
	}
	if len(b.path) == 1 {
		b.err = ErrTreeShape.New("cannot leave the root collection")
		return b
	}
	b.path = b.path[:len(b.path)-1]
	return b
}

// Build returns the tree. Collections that were entered but not left are closed implicitly.
func (b *TreeBuilder) Build() (*FileTree, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.built = true
	return b.tree, nil
}
