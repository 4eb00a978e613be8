package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttributes(t *testing.T) {
	var attrs Attributes
	attrs.Set("b", "2")
	attrs.Set("a", "1")
	attrs.Set("c", "3")
	attrs.Set("b", "two")

	require.Equal(t, []string{"a", "b", "c"}, attrs.Keys())
	v, ok := attrs.Get("b")
	require.True(t, ok)
	require.Equal(t, "two", v)

	require.True(t, attrs.Delete("a"))
	require.False(t, attrs.Delete("a"))
	require.Equal(t, map[string]string{"b": "two", "c": "3"}, attrs.Map())

	clone := attrs.Clone()
	clone.Set("b", "changed")
	v, _ = attrs.Get("b")
	require.Equal(t, "two", v)

	require.Equal(t, attrs, AttributesFromMap(map[string]string{"c": "3", "b": "two"}))
	require.Nil(t, AttributesFromMap(nil))
}

func TestNodeVariants(t *testing.T) {
	c := NewCollection("dir")
	require.Equal(t, KindCollection, c.Kind())
	_, ok := c.Locator()
	require.False(t, ok)

	f := NewFile("a.txt", MustLocate("file:///a.txt"))
	require.Equal(t, KindFile, f.Kind())
	loc, ok := f.Locator()
	require.True(t, ok)
	require.Equal(t, "file:///a.txt", loc.Value)

	k, err := ParseKind("file")
	require.NoError(t, err)
	require.Equal(t, KindFile, k)
	_, err = ParseKind("folder")
	require.True(t, ErrTreeShape.Has(err))

	f.ID = NewNodeID("obj", "", "100")
	f.Depth = 2
	d := f.Detached()
	require.True(t, d.ID.IsZero())
	require.Zero(t, d.Depth)
}

func TestNodeID(t *testing.T) {
	id := NewNodeID("urn:obj:1", "", "300")
	require.Equal(t, "urn:obj:1:default:300", id.String())
	require.Equal(t, CurrentIDVersion, id.IDVersion)

	parsed, err := ParseNodeID(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = ParseNodeID("nocolons")
	require.Error(t, err)
	_, err = ParseNodeID("obj:view:")
	require.Error(t, err)
}
