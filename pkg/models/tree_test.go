package models

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func scenarioTree(t *testing.T) *FileTree {
	t.Helper()
	tree, err := NewTreeBuilder("obj-1", "", "root").
		AddFile("a.txt", MustLocate("file:///a.txt")).
		EnterCollection("sub").
		AddFile("b.txt", MustLocate("file:///sub/b.txt")).
		Leave().
		Build()
	require.NoError(t, err)
	return tree
}

func TestNewFileTree(t *testing.T) {
	t.Run("root must be a collection", func(t *testing.T) {
		_, err := NewFileTree("obj", "", NewFile("x", Locator{}))
		require.True(t, ErrTypeMismatch.Has(err))
	})

	t.Run("empty view name means default", func(t *testing.T) {
		tree, err := NewFileTree("obj", "", NewCollection("root"))
		require.NoError(t, err)
		require.Equal(t, DefaultView, tree.View)
		require.Equal(t, 1, tree.Len())
		require.Equal(t, NoIndex, tree.Parent(RootIndex))
	})
}

func TestFileTreeAdd(t *testing.T) {
	tree := scenarioTree(t)

	require.Equal(t, 4, tree.Len())
	require.Len(t, tree.Children(RootIndex), 2)

	sub, ok := tree.Lookup("sub")
	require.True(t, ok)
	require.Equal(t, 1, tree.Node(sub).Depth)
	require.Equal(t, RootIndex, tree.Parent(sub))

	b, ok := tree.Lookup("sub", "b.txt")
	require.True(t, ok)
	require.Equal(t, 2, tree.Node(b).Depth)
	require.Equal(t, sub, tree.Parent(b))

	a, _ := tree.Lookup("a.txt")
	_, err := tree.Add(a, NewFile("nested", Locator{}))
	require.True(t, ErrTypeMismatch.Has(err))
	require.Equal(t, 4, tree.Len(), "a failed add must not change the tree")

	_, err = tree.Add(Index(42), NewCollection("x"))
	require.True(t, ErrTreeShape.Has(err))
}

func TestFileTreeWalk(t *testing.T) {
	tree := scenarioTree(t)

	var pre, post []string
	err := tree.Walk(RootIndex,
		func(i Index, rel int) error {
			pre = append(pre, tree.Node(i).Name)
			require.Equal(t, tree.Node(i).Depth, rel)
			return nil
		},
		func(i Index, rel int) error {
			post = append(post, tree.Node(i).Name)
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, []string{"root", "a.txt", "sub", "b.txt"}, pre)
	require.Equal(t, []string{"a.txt", "b.txt", "sub", "root"}, post)

	t.Run("skip children", func(t *testing.T) {
		var names []string
		err := tree.Walk(RootIndex, func(i Index, _ int) error {
			names = append(names, tree.Node(i).Name)
			if tree.Node(i).Name == "sub" {
				return SkipChildren
			}
			return nil
		}, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"root", "a.txt", "sub"}, names)
	})

	t.Run("count", func(t *testing.T) {
		sub, _ := tree.Lookup("sub")
		require.Equal(t, 4, tree.Count(RootIndex))
		require.Equal(t, 2, tree.Count(sub))
	})
}

func TestFileTreeFind(t *testing.T) {
	tree := scenarioTree(t)

	found := tree.FindByName("b.txt")
	require.Len(t, found, 1)
	require.Equal(t, "b.txt", tree.Node(found[0]).Name)

	found = tree.FindByRegex(regexp.MustCompile(`\.txt$`))
	require.Len(t, found, 2)
	require.Equal(t, "a.txt", tree.Node(found[0]).Name)
	require.Equal(t, "b.txt", tree.Node(found[1]).Name)

	_, ok := tree.Lookup("missing")
	require.False(t, ok)
}

func TestCopySubtree(t *testing.T) {
	src := scenarioTree(t)
	dst, err := NewFileTree("obj-2", "copy", NewCollection("top"))
	require.NoError(t, err)

	sub, _ := src.Lookup("sub")
	idx, err := dst.CopySubtree(RootIndex, src, sub)
	require.NoError(t, err)
	require.Equal(t, "sub", dst.Node(idx).Name)
	require.Equal(t, 1, dst.Node(idx).Depth)

	b, ok := dst.Lookup("sub", "b.txt")
	require.True(t, ok)
	require.Equal(t, 2, dst.Node(b).Depth)

	// The copy is independent of the source.
	dst.Node(b).Attributes.Set("k", "v")
	srcB, _ := src.Lookup("sub", "b.txt")
	require.Empty(t, src.Node(srcB).Attributes)
}

func TestTreeBuilder(t *testing.T) {
	t.Run("cannot leave root", func(t *testing.T) {
		_, err := NewTreeBuilder("obj", "", "root").Leave().Build()
		require.True(t, ErrTreeShape.Has(err))
	})

	t.Run("attributes", func(t *testing.T) {
		tree, err := NewTreeBuilder("obj", "v1", "root").
			AddFile("a", MustLocate("file:///a"), Attribute{Key: "size", Value: "12"}).
			AddCollection("empty").
			Build()
		require.NoError(t, err)
		a, _ := tree.Lookup("a")
		v, ok := tree.Node(a).Attributes.Get("size")
		require.True(t, ok)
		require.Equal(t, "12", v)
		require.Equal(t, "v1", tree.View)
	})
}

func TestLoader(t *testing.T) {
	root := NewCollection("sub")
	root.Depth = 3
	l, err := NewLoader("obj", "", root)
	require.NoError(t, err)

	child := NewFile("x", Locator{})
	child.Depth = 4
	idx, err := l.Attach(RootIndex, child)
	require.NoError(t, err)
	require.Equal(t, 4, l.Node(idx).Depth)

	_, err = l.Attach(idx, NewFile("y", Locator{}))
	require.True(t, ErrTreeShape.Has(err))

	_, err = NewLoader("obj", "", NewFile("f", Locator{}))
	require.True(t, ErrTreeShape.Has(err))
}

func TestSubtreeLoaderFileRoot(t *testing.T) {
	file := NewFile("a.txt", MustLocate("file:///a.txt"))
	file.Depth = 1
	l := NewSubtreeLoader("obj", "", file)

	_, err := l.Attach(RootIndex, NewFile("b.txt", Locator{}))
	require.True(t, ErrTreeShape.Has(err))

	tree := l.Tree()
	require.Equal(t, 1, tree.Len())
	require.Equal(t, "a.txt", tree.Root().Name)
	require.Equal(t, KindFile, tree.Root().Kind())
	require.Equal(t, DefaultView, tree.View)
}
