package models

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexIDCBOR(t *testing.T) {
	id := NewVertexID()

	data, err := cbor.Marshal(id)
	require.NoError(t, err)

	var tag cbor.Tag
	require.NoError(t, cbor.Unmarshal(data, &tag))
	assert.Equal(t, uint64(8), tag.Number)
	assert.Equal(t, []any{VertexTable, id.String()}, tag.Content)

	var got VertexID
	require.NoError(t, cbor.Unmarshal(data, &got))
	assert.Equal(t, id, got)
}

func TestVertexIDFromPlainString(t *testing.T) {
	id := NewVertexID()
	data, err := cbor.Marshal(id.String())
	require.NoError(t, err)

	var got VertexID
	require.NoError(t, cbor.Unmarshal(data, &got))
	assert.Equal(t, id, got)
}

func TestVertexIDRejectsOtherTables(t *testing.T) {
	data, err := cbor.Marshal(cbor.Tag{Number: 8, Content: []any{"person", NewVertexID().String()}})
	require.NoError(t, err)

	var got VertexID
	err = cbor.Unmarshal(data, &got)
	assert.ErrorContains(t, err, "expected do_node")
}

func TestParseVertexID(t *testing.T) {
	id := NewVertexID()
	parsed, err := ParseVertexID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.Equal(t, VertexTable, parsed.RecordID().Table)
	assert.False(t, parsed.IsZero())

	_, err = ParseVertexID("not-a-uuid")
	assert.Error(t, err)
	assert.True(t, VertexID{}.IsZero())
}

func TestGeneration(t *testing.T) {
	g := NewGeneration()
	parsed, err := ParseGeneration(g.String())
	require.NoError(t, err)
	assert.Equal(t, g, parsed)
	assert.True(t, Generation{}.IsZero())
}
