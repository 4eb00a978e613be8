package models

import (
	"errors"
	"regexp"
)

// SkipChildren may be returned by a pre-order visitor to skip the children of the current node.
var SkipChildren = errors.New("skip children")

// VisitFunc is called with the index of a node and its depth relative to the walk's start.
type VisitFunc func(i Index, rel int) error

// Walk visits the subtree rooted at start in document order. pre runs when a node is
// entered and post when it is left; either may be nil. The walk is iterative so deep
// trees do not grow the goroutine stack.
func (t *FileTree) Walk(start Index, pre, post VisitFunc) error {
	if t.IsEmpty() {
		return nil
	}
	type frame struct {
		idx  Index
		next int
	}
	enter := func(i Index, rel int) (bool, error) {
		if pre == nil {
			return true, nil
		}
		err := pre(i, rel)
		if errors.Is(err, SkipChildren) {
			return false, nil
		}
		return err == nil, err
	}

	descend, err := enter(start, 0)
	if err != nil {
		return err
	}
	stack := []frame{{idx: start}}
	if !descend {
		stack[0].next = len(t.entries[start].children)
	}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := t.entries[top.idx].children
		if top.next < len(children) {
			child := children[top.next]
			top.next++
			rel := len(stack)
			descend, err := enter(child, rel)
			if err != nil {
				return err
			}
			f := frame{idx: child}
			if !descend {
				f.next = len(t.entries[child].children)
			}
			stack = append(stack, f)
			continue
		}
		stack = stack[:len(stack)-1]
		if post != nil {
			if err := post(top.idx, len(stack)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Count returns the number of nodes in the subtree rooted at start.
func (t *FileTree) Count(start Index) int {
	n := 0
	_ = t.Walk(start, func(Index, int) error { n++; return nil }, nil)
	return n
}

// FindByName returns the indices of all nodes named name, in document order.
func (t *FileTree) FindByName(name string) []Index {
	return t.find(func(n *Node) bool { return n.Name == name })
}

// FindByRegex returns the indices of all nodes whose name matches re, in document order.
func (t *FileTree) FindByRegex(re *regexp.Regexp) []Index {
	return t.find(func(n *Node) bool { return re.MatchString(n.Name) })
}

func (t *FileTree) find(match func(*Node) bool) []Index {
	var found []Index
	_ = t.Walk(RootIndex, func(i Index, _ int) error {
		if match(t.Node(i)) {
			found = append(found, i)
		}
		return nil
	}, nil)
	return found
}

// Lookup resolves a slash separated path of names below the root, e.g. "sub/b.txt".
func (t *FileTree) Lookup(path ...string) (Index, bool) {
	if t.IsEmpty() {
		return NoIndex, false
	}
	cur := RootIndex
	for _, name := range path {
		next := NoIndex
		for _, c := range t.Children(cur) {
			if t.Node(c).Name == name {
				next = c
				break
			}
		}
		if next == NoIndex {
			return NoIndex, false
		}
		cur = next
	}
	return cur, true
}

// CopySubtree copies the subtree of src rooted at from below parent in t and returns the
// index of the copied subtree root. Backend identities are dropped.
func (t *FileTree) CopySubtree(parent Index, src *FileTree, from Index) (Index, error) {
	mapping := map[Index]Index{}
	var top Index = NoIndex
	err := src.Walk(from, func(i Index, rel int) error {
		target := parent
		if rel > 0 {
			target = mapping[src.Parent(i)]
		}
		n := src.Node(i).Clone()
		n.ID = NodeID{}
		idx, err := t.Add(target, n)
		if err != nil {
			return err
		}
		mapping[i] = idx
		if rel == 0 {
			top = idx
		}
		return nil
	}, nil)
	return top, err
}
