package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.NotNil(t, c)
	require.NotEmpty(t, c.List("", ""))
}

func TestCatalog_Get(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	t.Run("known game", func(t *testing.T) {
		g, ok := c.Get("budget-builder-kids")
		require.True(t, ok)
		require.Equal(t, "Budget Builder", g.Title)
		require.Equal(t, "finance", g.Category)
		require.Equal(t, 100, g.MaxScore)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, ok := c.Get("does-not-exist")
		require.False(t, ok)
	})
}

func TestCatalog_List(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	t.Run("no filters returns everything", func(t *testing.T) {
		all := c.List("", "")
		require.Len(t, all, 10)
	})

	t.Run("filter by category", func(t *testing.T) {
		finance := c.List("finance", "")
		require.Len(t, finance, 3)
		for _, g := range finance {
			require.Equal(t, "finance", g.Category)
		}
	})

	t.Run("filter by age band", func(t *testing.T) {
		kids := c.List("", "kids")
		require.NotEmpty(t, kids)
		for _, g := range kids {
			require.Equal(t, "kids", g.AgeBand)
		}
	})

	t.Run("combined filters", func(t *testing.T) {
		result := c.List("finance", "teens")
		require.Len(t, result, 1)
		require.Equal(t, "stock-market-sim-teens", result[0].ID)
	})

	t.Run("no matches", func(t *testing.T) {
		require.Empty(t, c.List("finance", "toddlers"))
	})
}
