package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/models"
)

func TestPage(t *testing.T) {
	cases := []struct {
		first, max, n int
		lo, hi        int
	}{
		{0, 2, 5, 0, 2},
		{2, 2, 5, 2, 4},
		{4, 2, 5, 4, 5},
		{7, 2, 5, 5, 5},
		{-3, 2, 5, 0, 2},
		{1, -1, 5, 1, 5},
		{0, 0, 5, 0, 0},
	}
	for _, c := range cases {
		lo, hi := NewPage(c.first, c.max).Slice(c.n)
		require.Equal(t, c.lo, lo, "%+v", c)
		require.Equal(t, c.hi, hi, "%+v", c)
	}
	require.True(t, NewPage(0, 0).Empty())
	require.False(t, NewPage(0, -5).Bounded())
}

func TestWithinDepth(t *testing.T) {
	require.True(t, WithinDepth(0, 0))
	require.False(t, WithinDepth(1, 0))
	require.True(t, WithinDepth(3, 3))
	require.True(t, WithinDepth(100, Unbounded))
	require.False(t, WithinDepth(-1, Unbounded))
	require.Equal(t, Unbounded, NormalizeDepth(-7))
	require.Equal(t, 2, NormalizeDepth(2))
}

func file(name, loc string, attrs map[string]string) models.Node {
	n := models.NewFile(name, models.MustLocate(loc))
	n.Attributes = models.AttributesFromMap(attrs)
	return n
}

func TestDiff(t *testing.T) {
	t.Run("type mismatch", func(t *testing.T) {
		_, err := Diff(models.NewCollection("dir"), file("dir", "file:///dir", nil))
		require.True(t, models.ErrTypeMismatch.Has(err))
	})

	t.Run("no change", func(t *testing.T) {
		stored := file("a.txt", "file:///a.txt", map[string]string{"k": "v"})
		c, err := Diff(stored, stored.Clone())
		require.NoError(t, err)
		require.True(t, c.IsEmpty())
	})

	t.Run("rename", func(t *testing.T) {
		stored := models.NewCollection("old")
		data := models.NewCollection("new")
		c, err := Diff(stored, data)
		require.NoError(t, err)
		require.NotNil(t, c.Name)
		require.Equal(t, "new", *c.Name)
		require.Nil(t, c.Description)
		require.Nil(t, c.Locator)
		require.Equal(t, "new", c.Apply(stored).Name)
	})

	t.Run("attributes", func(t *testing.T) {
		stored := file("a", "file:///a", map[string]string{"keep": "1", "change": "old", "drop": "x"})
		data := file("a", "file:///a", map[string]string{"keep": "1", "change": "new", "add": "y"})
		c, err := Diff(stored, data)
		require.NoError(t, err)
		require.Equal(t, map[string]string{"change": "new", "add": "y"}, c.SetAttributes)
		require.Equal(t, []string{"drop"}, c.DeleteAttributes)
		require.Equal(t, data.Attributes, c.Apply(stored).Attributes)
	})

	t.Run("disjoint attribute sets", func(t *testing.T) {
		stored := file("a", "file:///a", map[string]string{"a": "1", "b": "2"})
		data := file("a", "file:///a", map[string]string{"c": "3"})
		c, err := Diff(stored, data)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, c.DeleteAttributes)
		applied := c.Apply(stored)
		require.Equal(t, []string{"c"}, applied.Attributes.Keys())
	})

	t.Run("locator and description", func(t *testing.T) {
		stored := file("a", "file:///a", nil)
		data := file("a", "https://example.org/a", nil)
		data.Description = "moved"
		c, err := Diff(stored, data)
		require.NoError(t, err)
		require.NotNil(t, c.Locator)
		require.Equal(t, "https", c.Locator.Scheme)
		applied := c.Apply(stored)
		loc, _ := applied.Locator()
		require.Equal(t, "https://example.org/a", loc.Value)
		require.Equal(t, "moved", applied.Description)
	})

	t.Run("apply keeps identity", func(t *testing.T) {
		stored := models.NewCollection("dir")
		stored.ID = models.NewNodeID("o", "", "400")
		stored.Depth = 1
		c, err := Diff(stored, models.NewCollection("renamed"))
		require.NoError(t, err)
		applied := c.Apply(stored)
		require.Equal(t, stored.ID, applied.ID)
		require.Equal(t, 1, applied.Depth)
	})
}
