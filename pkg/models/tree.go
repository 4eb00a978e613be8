package models

// Index addresses a node inside its FileTree.
type Index int

// RootIndex is the index of the root of every non-empty FileTree.
const RootIndex Index = 0

// NoIndex is returned as the parent of the root.
const NoIndex Index = -1

type entry struct {
	node     Node
	parent   Index
	children []Index
}

// FileTree is the content tree of one view of a digital object. Nodes are stored in an
// arena; the root is at RootIndex. The zero value with owner and view set is the empty tree.
type FileTree struct {
	DigitalObjectID string
	View            string

	entries []entry
}

// NewFileTree returns a tree holding only root. The root must be a collection.
func NewFileTree(digitalObjectID, view string, root Node) (*FileTree, error) {
	if !root.IsCollection() {
		return nil, ErrTypeMismatch.New("root node %q must be a collection", root.Name)
	}
	if root.Content == nil {
		root.Content = Collection{}
	}
	t := &FileTree{DigitalObjectID: digitalObjectID, View: ViewOrDefault(view)}
	t.entries = append(t.entries, entry{node: root, parent: NoIndex})
	return t, nil
}

// EmptyTree returns a tree without nodes. Persisting it deletes the view.
func EmptyTree(digitalObjectID, view string) *FileTree {
	return &FileTree{DigitalObjectID: digitalObjectID, View: ViewOrDefault(view)}
}

// IsEmpty reports whether the tree has no root.
func (t *FileTree) IsEmpty() bool {
	return t == nil || len(t.entries) == 0
}

// Len returns the number of nodes.
func (t *FileTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Node returns the node at i. The pointer stays valid until the next Add.
func (t *FileTree) Node(i Index) *Node {
	return &t.entries[i].node
}

// Root returns the root node. It panics on an empty tree.
func (t *FileTree) Root() *Node {
	return t.Node(RootIndex)
}

// Parent returns the parent index of i, or NoIndex for the root.
func (t *FileTree) Parent(i Index) Index {
	return t.entries[i].parent
}

// Children returns the child indices of i in document order. The slice must not be modified.
func (t *FileTree) Children(i Index) []Index {
	return t.entries[i].children
}

// Add attaches n as the last child of parent and returns its index. The depth of n is
// derived from its parent unless the tree was loaded with stored depths.
func (t *FileTree) Add(parent Index, n Node) (Index, error) {
	if int(parent) < 0 || int(parent) >= len(t.entries) {
		return NoIndex, ErrTreeShape.New("parent index %d out of range", parent)
	}
	p := &t.entries[parent]
	if !p.node.IsCollection() {
		return NoIndex, ErrTypeMismatch.New("cannot add %q below file %q", n.Name, p.node.Name)
	}
	if n.Content == nil {
		n.Content = Collection{}
	}
	n.Depth = p.node.Depth + 1
	idx := Index(len(t.entries))
	p.children = append(p.children, idx)
	t.entries = append(t.entries, entry{node: n, parent: parent})
	return idx, nil
}

// attach is Add without depth rewriting, used when rebuilding trees from storage.
func (t *FileTree) attach(parent Index, n Node) (Index, error) {
	p := &t.entries[parent]
	if !p.node.IsCollection() {
		return NoIndex, ErrTreeShape.New("node %q is stored below file %q", n.Name, p.node.Name)
	}
	idx := Index(len(t.entries))
	p.children = append(p.children, idx)
	t.entries = append(t.entries, entry{node: n, parent: parent})
	return idx, nil
}

// Loader rebuilds a tree from stored nodes whose depths must be preserved.
type Loader struct {
	tree *FileTree
}

// NewLoader starts a stored tree at root, keeping the root's stored depth.
func NewLoader(digitalObjectID, view string, root Node) (*Loader, error) {
	if !root.IsCollection() {
		return nil, ErrTreeShape.New("first node %q is not a collection", root.Name)
	}
	return NewSubtreeLoader(digitalObjectID, view, root), nil
}

// NewSubtreeLoader starts a subtree at root. Unlike NewLoader the root may be a file, in
// which case the subtree is that single node.
func NewSubtreeLoader(digitalObjectID, view string, root Node) *Loader {
	t := &FileTree{DigitalObjectID: digitalObjectID, View: ViewOrDefault(view)}
	t.entries = append(t.entries, entry{node: root, parent: NoIndex})
	return &Loader{tree: t}
}

// Attach appends n as the last child of parent without touching its depth.
func (l *Loader) Attach(parent Index, n Node) (Index, error) {
	if int(parent) < 0 || int(parent) >= len(l.tree.entries) {
		return NoIndex, ErrTreeShape.New("parent index %d out of range", parent)
	}
	return l.tree.attach(parent, n)
}

// Node returns the node at i of the tree under construction.
func (l *Loader) Node(i Index) *Node {
	return l.tree.Node(i)
}

// Tree returns the rebuilt tree.
func (l *Loader) Tree() *FileTree {
	return l.tree
}
