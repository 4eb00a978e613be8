package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONViewRoundTrip(t *testing.T) {
	tree := scenarioTree(t)
	a, _ := tree.Lookup("a.txt")
	tree.Node(a).Attributes.Set("checksum", "abc")
	tree.Node(RootIndex).Description = "top level"

	data, err := ExportJSON(tree)
	require.NoError(t, err)
	require.Contains(t, string(data), `"type": "FileNode"`)

	back, err := ImportJSON(data)
	require.NoError(t, err)
	require.Equal(t, Document(tree, false), Document(back, false))

	b, ok := back.Lookup("sub", "b.txt")
	require.True(t, ok)
	require.Equal(t, 2, back.Node(b).Depth)
}

func TestJSONViewErrors(t *testing.T) {
	_, err := ImportJSON([]byte(`{"objectId":"o","viewName":"v","root":{"name":"r","type":"FileNode"}}`))
	require.True(t, ErrTypeMismatch.Has(err))

	_, err = ImportJSON([]byte(`{"objectId":"o","viewName":"v","root":{"name":"r","type":"Folder"}}`))
	require.True(t, ErrTreeShape.Has(err))

	_, err = ImportJSON([]byte(`{"objectId":"o","viewName":"v","root":{"name":"r","children":[{"name":"f","type":"FileNode","children":[{"name":"x"}]}]}}`))
	require.True(t, ErrTypeMismatch.Has(err))

	_, err = ImportJSON([]byte(`{"objectId":"o","viewName":"v","root":{"name":"r","type":"CollectionNode","children":[null]}}`))
	require.True(t, ErrTreeShape.Has(err))

	_, err = ImportJSON([]byte(`{"objectId":"o","viewName":"v","root":{"name":"r","children":[{"name":"sub","children":[{"name":"x"},null]}]}}`))
	require.True(t, ErrTreeShape.Has(err))

	tree, err := ImportJSON([]byte(`{"objectId":"o","viewName":"v"}`))
	require.NoError(t, err)
	require.True(t, tree.IsEmpty())
}
