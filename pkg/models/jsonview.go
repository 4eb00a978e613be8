package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Node type names used by the JSON view.
const (
	JSONCollectionType = "CollectionNode"
	JSONFileType       = "FileNode"
)

// ViewDocument is the JSON representation of a FileTree.
type ViewDocument struct {
	ObjectID string    `json:"objectId"`
	ViewName string    `json:"viewName"`
	Root     *JSONNode `json:"root,omitempty"`
}

// JSONNode is one node of a ViewDocument.
type JSONNode struct {
	NodeID      string            `json:"nodeId,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        string            `json:"type"`
	Locator     *Locator          `json:"locator,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Children    []*JSONNode       `json:"children,omitempty"`
}

// Document converts a tree into its JSON view. Node ids are included when withIDs is set.
func Document(t *FileTree, withIDs bool) *ViewDocument {
	doc := &ViewDocument{ObjectID: t.DigitalObjectID, ViewName: t.View}
	if t.IsEmpty() {
		return doc
	}
	nodes := make(map[Index]*JSONNode, t.Len())
	_ = t.Walk(RootIndex, func(i Index, rel int) error {
		n := t.Node(i)
		jn := &JSONNode{
			Name:        n.Name,
			Description: n.Description,
			Type:        JSONCollectionType,
		}
		if withIDs && !n.ID.IsZero() {
			jn.NodeID = n.ID.InTreeID
		}
		if len(n.Attributes) > 0 {
			jn.Attributes = n.Attributes.Map()
		}
		if f, ok := n.Content.(File); ok {
			loc := f.Locator
			jn.Type = JSONFileType
			jn.Locator = &loc
		}
		nodes[i] = jn
		if rel == 0 {
			doc.Root = jn
		} else {
			p := nodes[t.Parent(i)]
			p.Children = append(p.Children, jn)
		}
		return nil
	}, nil)
	return doc
}

// ExportJSON renders a tree as an indented JSON view including node ids.
func ExportJSON(t *FileTree) ([]byte, error) {
	return Document(t, true).Marshal()
}

// Marshal renders the document as indented JSON.
func (d *ViewDocument) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal view %s/%s: %w", d.ObjectID, d.ViewName, err)
	}
	return data, nil
}

// ImportJSON parses a JSON view into a new in-memory tree. Node ids in the document are ignored.
func ImportJSON(data []byte) (*FileTree, error) {
	var doc ViewDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal view: %w", err)
	}
	return doc.Tree()
}

// Tree builds an in-memory tree from the document.
func (d *ViewDocument) Tree() (*FileTree, error) {
	if d.Root == nil {
		return EmptyTree(d.ObjectID, d.ViewName), nil
	}
	root, err := d.Root.node()
	if err != nil {
		return nil, err
	}
	t, err := NewFileTree(d.ObjectID, d.ViewName, root)
	if err != nil {
		return nil, err
	}
	type pending struct {
		parent Index
		node   *JSONNode
	}
	queue := make([]pending, 0, len(d.Root.Children))
	for _, c := range d.Root.Children {
		queue = append(queue, pending{parent: RootIndex, node: c})
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		n, err := p.node.node()
		if err != nil {
			return nil, err
		}
		idx, err := t.Add(p.parent, n)
		if err != nil {
			return nil, err
		}
		for _, c := range p.node.Children {
			queue = append(queue, pending{parent: idx, node: c})
		}
	}
	return t, nil
}

func (jn *JSONNode) node() (Node, error) {
	if jn == nil {
		return Node{}, ErrTreeShape.New("null node in view document")
	}
	var n Node
	switch jn.Type {
	case JSONCollectionType, "":
		n = NewCollection(jn.Name)
	case JSONFileType:
		if len(jn.Children) > 0 {
			return Node{}, ErrTypeMismatch.New("file %q has children", jn.Name)
		}
		var loc Locator
		if jn.Locator != nil {
			loc = *jn.Locator
		}
		n = NewFile(jn.Name, loc)
	default:
		return Node{}, ErrTreeShape.New("unknown node type %q", jn.Type)
	}
	n.Description = jn.Description
	n.Attributes = AttributesFromMap(jn.Attributes)
	return n, nil
}
