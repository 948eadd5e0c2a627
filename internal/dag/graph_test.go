package dag

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds a -> b, a -> c, b -> d, c -> d.
func diamond(t *testing.T) *Graph[string] {
	t.Helper()
	g := New[string]()
	for _, v := range []string{"a", "b", "c", "d"} {
		require.True(t, g.AddVertex(v))
	}
	mustEdge(t, g, "a", "b", 1)
	mustEdge(t, g, "a", "c", 5)
	mustEdge(t, g, "b", "d", 10)
	mustEdge(t, g, "c", "d", 1)
	return g
}

func mustEdge(t *testing.T, g *Graph[string], s, d string, w float64) {
	t.Helper()
	_, err := g.AddEdge(s, d, w)
	require.NoError(t, err)
}

func TestNew(t *testing.T) {
	g := New[string]()
	require.NotNil(t, g)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.Size())
	assert.Empty(t, g.Vertices())
}

func TestAddVertex(t *testing.T) {
	g := New[string]()

	assert.True(t, g.AddVertex("a"))
	assert.False(t, g.AddVertex("a"), "duplicate vertices are rejected")
	assert.True(t, g.AddVertex("b"))
	assert.Equal(t, []string{"a", "b"}, g.Vertices())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New[string]()
		g.AddVertex("a")
		g.AddVertex("b")

		e, err := g.AddEdge("a", "b", 2.5)
		require.NoError(t, err)
		assert.Equal(t, Edge[string]{Source: "a", Target: "b", Weight: 2.5}, e)
		assert.True(t, g.ContainsEdge("a", "b"))
		assert.False(t, g.ContainsEdge("b", "a"))
		assert.Equal(t, 1, g.Size())
	})

	t.Run("error cases", func(t *testing.T) {
		g := New[string]()
		g.AddVertex("a")
		g.AddVertex("b")
		mustEdge(t, g, "a", "b", 1)

		_, err := g.AddEdge("dne", "a", 1)
		assert.ErrorIs(t, err, ErrVertexNotFound)
		assert.ErrorContains(t, err, "source vertex not found")

		_, err = g.AddEdge("a", "dne", 1)
		assert.ErrorContains(t, err, "destination vertex not found")

		_, err = g.AddEdge("a", "a", 1)
		assert.ErrorIs(t, err, ErrSelfLoop)

		_, err = g.AddEdge("a", "b", 1)
		assert.ErrorIs(t, err, ErrEdgeExists)

		_, err = g.AddEdge("b", "a", 1)
		assert.ErrorIs(t, err, ErrCycle)
		assert.Equal(t, 1, g.Size(), "a rejected edge leaves the graph unchanged")
	})

	t.Run("longer cycles are rejected", func(t *testing.T) {
		g := diamond(t)
		_, err := g.AddEdge("d", "a", 1)
		assert.ErrorIs(t, err, ErrCycle)
		ok, err := g.HasPath("d", "a")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRemove(t *testing.T) {
	t.Run("remove edge", func(t *testing.T) {
		g := diamond(t)
		e, ok := g.RemoveEdge("a", "b")
		require.True(t, ok)
		assert.Equal(t, 1.0, e.Weight)
		_, ok = g.RemoveEdge("a", "b")
		assert.False(t, ok)

		// The edge is gone from the cycle mirror too.
		_, err := g.AddEdge("b", "a", 1)
		assert.NoError(t, err)
	})

	t.Run("remove vertex drops incident edges", func(t *testing.T) {
		g := diamond(t)
		require.True(t, g.RemoveVertex("b"))
		assert.False(t, g.RemoveVertex("b"))
		assert.Equal(t, 3, g.Len())
		assert.Equal(t, 2, g.Size())

		children, err := g.Children("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, children)

		require.True(t, g.AddVertex("b"))
		mustEdge(t, g, "d", "b", 1)
	})
}

func TestLookupsFailFast(t *testing.T) {
	g := diamond(t)
	calls := map[string]func() error{
		"Parents":       func() error { _, err := g.Parents("x"); return err },
		"Children":      func() error { _, err := g.Children("x"); return err },
		"Neighbors":     func() error { _, err := g.Neighbors("x"); return err },
		"Ancestors":     func() error { _, err := g.Ancestors("x"); return err },
		"Descendants":   func() error { _, err := g.Descendants("x"); return err },
		"Degree":        func() error { _, err := g.Degree("x"); return err },
		"Siblings":      func() error { _, err := g.Siblings("x"); return err },
		"ShortestPath":  func() error { _, err := g.ShortestPath("a", "x"); return err },
		"PathsBetween":  func() error { _, err := g.PathsBetween("x", "a"); return err },
		"IncomingEdges": func() error { _, err := g.IncomingEdges("x"); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), ErrVertexNotFound)
		})
	}
}

func TestTopologyQueries(t *testing.T) {
	g := diamond(t)
	g.AddVertex("e")
	mustEdge(t, g, "a", "e", 1)

	tests := []struct {
		name string
		got  func() ([]string, error)
		want []string
	}{
		{"parents of d", func() ([]string, error) { return g.Parents("d") }, []string{"b", "c"}},
		{"children of a", func() ([]string, error) { return g.Children("a") }, []string{"b", "c", "e"}},
		{"neighbors of b", func() ([]string, error) { return g.Neighbors("b") }, []string{"a", "d"}},
		{"ancestors of d", func() ([]string, error) { return g.Ancestors("d") }, []string{"a", "b", "c"}},
		{"descendants of a", func() ([]string, error) { return g.Descendants("a") }, []string{"b", "c", "d", "e"}},
		{"siblings of b", func() ([]string, error) { return g.Siblings("b") }, []string{"c", "e"}},
		{"sources of d", func() ([]string, error) { return g.SourcesOf("d") }, []string{"a"}},
		{"sinks of a", func() ([]string, error) { return g.SinksOf("a") }, []string{"d", "e"}},
		{"sinks of e", func() ([]string, error) { return g.SinksOf("e") }, []string{"e"}},
		{"roots", func() ([]string, error) { return g.Roots(), nil }, []string{"a"}},
		{"sinks", func() ([]string, error) { return g.Sinks(), nil }, []string{"d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("topological order", func(t *testing.T) {
		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		require.Len(t, order, 5)
		assert.Equal(t, "a", order[0])
		pos := make(map[string]int, len(order))
		for i, v := range order {
			pos[v] = i
		}
		for _, e := range g.Edges() {
			assert.Less(t, pos[e.Source], pos[e.Target], "edge %s", e)
		}
	})

	t.Run("degrees", func(t *testing.T) {
		in, err := g.InDegree("d")
		require.NoError(t, err)
		out, err := g.OutDegree("a")
		require.NoError(t, err)
		all, err := g.Degree("b")
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 2}, []int{in, out, all})
	})
}

func TestSiblingKinds(t *testing.T) {
	g := New[string]()
	for _, v := range []string{"p1", "p2", "x", "full", "half"} {
		g.AddVertex(v)
	}
	mustEdge(t, g, "p1", "x", 1)
	mustEdge(t, g, "p2", "x", 1)
	mustEdge(t, g, "p1", "full", 1)
	mustEdge(t, g, "p2", "full", 1)
	mustEdge(t, g, "p1", "half", 1)

	full, err := g.FullSiblings("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"full"}, full)

	half, err := g.HalfSiblings("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"half"}, half)
}

func TestPaths(t *testing.T) {
	g := diamond(t)

	t.Run("shortest path follows weights", func(t *testing.T) {
		path, err := g.ShortestPath("a", "d")
		require.NoError(t, err)
		want := []Edge[string]{{Source: "a", Target: "c", Weight: 5}, {Source: "c", Target: "d", Weight: 1}}
		if diff := cmp.Diff(want, path); diff != "" {
			t.Errorf("path mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 6.0, PathWeight(path))

		vertices, err := g.ShortestVertexPath("a", "d")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "d"}, vertices)
	})

	t.Run("weight change reroutes", func(t *testing.T) {
		require.NoError(t, g.SetEdgeWeight("b", "d", 1))
		vertices, err := g.ShortestVertexPath("a", "d")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "d"}, vertices)
		assert.ErrorIs(t, g.SetEdgeWeight("d", "a", 1), ErrEdgeNotFound)
	})

	t.Run("unreachable is empty", func(t *testing.T) {
		path, err := g.ShortestPath("d", "a")
		require.NoError(t, err)
		assert.Empty(t, path)

		paths, err := g.PathsBetween("d", "a")
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("all simple paths", func(t *testing.T) {
		paths, err := g.PathsBetween("a", "d")
		require.NoError(t, err)
		want := [][]string{{"a", "b", "d"}, {"a", "c", "d"}}
		if diff := cmp.Diff(want, paths); diff != "" {
			t.Errorf("paths mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestConcurrentReads(t *testing.T) {
	g := diamond(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.Descendants("a")
			_, _ = g.ShortestPath("a", "d")
			_ = g.Edges()
		}()
	}
	wg.Wait()
	assert.Len(t, g.Edges(), 4)
}
