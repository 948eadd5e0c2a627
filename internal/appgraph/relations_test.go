package appgraph

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/gridgraph/internal/failure"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildAndCycleScenario(t *testing.T) {
	ctx := context.Background()
	g, mk := permissive(t)
	a, b := mk("a"), mk("b")

	var childDisconnects, parentDisconnects atomic.Int32
	a.OnDisconnectChild(func(context.Context, *Graph[string], *Vertex[string], *Vertex[string]) error {
		childDisconnects.Add(1)
		return nil
	})
	b.OnDisconnectParent(func(context.Context, *Graph[string], *Vertex[string], *Vertex[string]) error {
		parentDisconnects.Add(1)
		return nil
	})

	require.Nil(t, g.AddVertex(ctx, a))
	require.Nil(t, a.AddChild(ctx, g, b))
	assert.Equal(t, []string{"b"}, names(a.ChildrenIn(g)))
	assert.Equal(t, []string{"a"}, names(b.ParentsIn(g)))
	assert.Same(t, g, b.Graph())

	f := b.AddChild(ctx, g, a)
	require.NotNil(t, f)
	assert.Equal(t, failure.GraphCycleDetected, f.Kind)
	assert.Equal(t, 1, g.Size())

	require.Nil(t, g.RemoveVertex(ctx, a))
	assert.False(t, g.ContainsVertex(a))
	assert.Empty(t, b.ParentsIn(g))
	assert.True(t, b.IsRoot(g))
	assert.EqualValues(t, 1, childDisconnects.Load())
	assert.EqualValues(t, 1, parentDisconnects.Load())
}

func TestAddChildRollsBackInsertion(t *testing.T) {
	ctx := context.Background()
	g, mk := permissive(t)
	a, b := mk("a"), mk("b")
	require.Nil(t, g.AddVertex(ctx, a))

	var added atomic.Int32
	g.OnVertexAdded(func(context.Context, *Graph[string], *Vertex[string]) error { added.Add(1); return nil })
	g.AddEdgeCheck(validation.CreateEdge, func(e Endpoints[string]) error {
		if e.Target == b {
			return errors.New("b cannot be a target")
		}
		return nil
	})

	f := a.ShouldAddChild(g, b)
	require.NotNil(t, f)
	assert.Equal(t, failure.RejectedByGraphValidation, f.Kind)

	f = a.AddChild(ctx, g, b)
	require.NotNil(t, f)
	assert.Equal(t, failure.RejectedByGraphValidation, f.Kind)
	assert.False(t, g.ContainsVertex(b))
	assert.Nil(t, b.Graph())
	assert.Zero(t, added.Load())
	assert.Equal(t, 1, g.Len())
}

func TestAddChildConnectsPresentVertex(t *testing.T) {
	ctx := context.Background()
	g, mk := permissive(t)
	a, b := mk("a"), mk("b")
	require.Nil(t, g.AddVertex(ctx, a))
	require.Nil(t, g.AddVertex(ctx, b))

	require.Nil(t, b.AddParent(ctx, g, a))
	assert.True(t, a.HasChild(g, b))
	assert.Equal(t, failure.EdgeAlreadyExists, a.AddChild(ctx, g, b).Kind)
	assert.Equal(t, failure.SelfReference, a.AddChild(ctx, g, a).Kind)

	outsider := mk("outsider")
	f := outsider.AddChild(ctx, g, mk("c"))
	require.NotNil(t, f)
	assert.Equal(t, failure.VertexNotPresent, f.Kind)
}

func TestConnectAndDisconnect(t *testing.T) {
	ctx := context.Background()
	g, mk := permissive(t)
	a, b := mk("a"), mk("b")
	require.Nil(t, g.AddVertex(ctx, a))
	require.Nil(t, g.AddVertex(ctx, b))

	assert.Equal(t, failure.SelfReference, a.ConnectChild(ctx, g, a).Kind)
	require.Nil(t, a.ConnectChildWeighted(ctx, g, b, 3))
	e, ok := g.Edge(a, b)
	require.True(t, ok)
	assert.Equal(t, 3.0, e.Weight)

	assert.Equal(t, failure.SelfReference, b.DisconnectParent(ctx, g, b).Kind)
	require.Nil(t, b.DisconnectParent(ctx, g, a))
	assert.Equal(t, failure.EdgeNotPresent, a.DisconnectChild(ctx, g, b).Kind)
	assert.True(t, g.ContainsVertex(b), "disconnecting keeps both vertices")
}

func TestRemoveChild(t *testing.T) {
	ctx := context.Background()
	g, mk := permissive(t)
	a, b, c := mk("a"), mk("b"), mk("c")
	require.Nil(t, g.AddVertex(ctx, a))
	require.Nil(t, a.AddChild(ctx, g, b))
	require.Nil(t, g.AddVertex(ctx, c))

	assert.Equal(t, failure.EdgeNotPresent, a.RemoveChild(ctx, g, c).Kind)
	require.Nil(t, b.RemoveParent(ctx, g, a))
	assert.False(t, g.ContainsVertex(a))
	assert.True(t, g.ContainsVertex(b))
}

func TestDisconnectChildren(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Graph[string], *Vertex[string], []*Vertex[string]) {
		g, mk := permissive(t)
		p := mk("p")
		require.Nil(t, g.AddVertex(ctx, p))
		var kids []*Vertex[string]
		for _, name := range []string{"x", "y", "z"} {
			k := mk(name)
			require.Nil(t, p.AddChild(ctx, g, k))
			kids = append(kids, k)
		}
		return g, p, kids
	}

	t.Run("all or nothing", func(t *testing.T) {
		g, p, kids := setup(t)
		kids[1].Policies().Reject(policy.DisconnectParent, p)
		kids[2].Policies().Reject(policy.DisconnectParent, p)

		failures := p.DisconnectChildren(ctx, g, nil)
		require.Len(t, failures, 2)
		assert.Same(t, kids[1], failures[0].Rejector)
		assert.Same(t, kids[2], failures[1].Rejector)
		assert.Equal(t, 3, g.Size())
	})

	t.Run("predicate selects children", func(t *testing.T) {
		g, p, kids := setup(t)
		kids[1].Policies().Reject(policy.DisconnectParent, p)

		failures := p.DisconnectChildren(ctx, g, func(v *Vertex[string]) bool { return v != kids[1] })
		assert.Empty(t, failures)
		assert.Equal(t, []string{"y"}, names(p.ChildrenIn(g)))
	})

	t.Run("parents", func(t *testing.T) {
		g, p, kids := setup(t)
		q := NewVertex("q", WithName("q"), WithAcceptUnset(true))
		require.Nil(t, kids[0].AddParent(ctx, g, q))

		assert.Empty(t, kids[0].DisconnectParents(ctx, g, nil))
		assert.Empty(t, kids[0].ParentsIn(g))
		assert.Equal(t, []string{"y", "z"}, names(p.ChildrenIn(g)))
	})
}

func TestAdopt(t *testing.T) {
	ctx := context.Background()

	t.Run("child leaves its other parents", func(t *testing.T) {
		g, mk := permissive(t)
		p1, p2, v, child := mk("p1"), mk("p2"), mk("v"), mk("child")
		for _, x := range []*Vertex[string]{p1, p2, v} {
			require.Nil(t, g.AddVertex(ctx, x))
		}
		require.Nil(t, p1.AddChild(ctx, g, child))
		require.Nil(t, p2.ConnectChild(ctx, g, child))

		require.Nil(t, v.AdoptChild(ctx, g, child))
		assert.Equal(t, []string{"v"}, names(child.ParentsIn(g)))
		assert.True(t, g.ContainsVertex(p1))
	})

	t.Run("existing edge is refused", func(t *testing.T) {
		g, mk := permissive(t)
		p1, p2, child := mk("p1"), mk("p2"), mk("child")
		require.Nil(t, g.AddVertex(ctx, p1))
		require.Nil(t, g.AddVertex(ctx, p2))
		require.Nil(t, p1.AddChildWeighted(ctx, g, child, 7))
		require.Nil(t, p2.ConnectChild(ctx, g, child))

		f := p1.AdoptChild(ctx, g, child)
		require.NotNil(t, f)
		assert.Equal(t, failure.EdgeAlreadyExists, f.Kind)
		assert.ElementsMatch(t, []string{"p1", "p2"}, names(child.ParentsIn(g)))
		e, _ := g.Edge(p1, child)
		assert.Equal(t, 7.0, e.Weight)

		f = child.AdoptParent(ctx, g, p2)
		require.NotNil(t, f)
		assert.Equal(t, failure.EdgeAlreadyExists, f.Kind)
	})

	t.Run("refused detach changes nothing", func(t *testing.T) {
		g, mk := permissive(t)
		p1, v, child := mk("p1"), mk("v"), mk("child")
		require.Nil(t, g.AddVertex(ctx, p1))
		require.Nil(t, g.AddVertex(ctx, v))
		require.Nil(t, p1.AddChild(ctx, g, child))
		p1.Policies().Reject(policy.DisconnectChild, child)

		f := v.AdoptChild(ctx, g, child)
		require.NotNil(t, f)
		assert.Equal(t, failure.RejectedByVertexPolicy, f.Kind)
		assert.Equal(t, []string{"p1"}, names(child.ParentsIn(g)))
	})

	t.Run("parent leaves its other children", func(t *testing.T) {
		g, mk := permissive(t)
		parent, c1, v := mk("parent"), mk("c1"), mk("v")
		require.Nil(t, g.AddVertex(ctx, parent))
		require.Nil(t, g.AddVertex(ctx, v))
		require.Nil(t, parent.AddChild(ctx, g, c1))

		require.Nil(t, v.AdoptParent(ctx, g, parent))
		assert.Equal(t, []string{"v"}, names(parent.ChildrenIn(g)))
	})
}

func TestTypeQueries(t *testing.T) {
	ctx := context.Background()
	h := policy.NewHierarchy()
	require.NoError(t, h.Declare("sensor", "device"))
	require.NoError(t, h.Declare("thermometer", "sensor"))

	g, mk := permissive(t, WithHierarchy(h))
	hub := mk("hub", WithType("device"))
	therm := mk("therm", WithType("thermometer"))
	sink := mk("sink", WithType("sink"))
	require.Nil(t, g.AddVertex(ctx, hub))
	require.Nil(t, hub.AddChild(ctx, g, therm))
	require.Nil(t, therm.AddChild(ctx, g, sink))

	assert.Equal(t, []string{"therm"}, names(hub.ChildrenOfType(g, "sensor")))
	assert.True(t, hub.HasDescendantOfType(g, "sink"))
	assert.False(t, hub.HasChildOfType(g, "sink"))
	assert.Equal(t, 1, sink.NumberOfParentsOfType(g, "device"))
	assert.ElementsMatch(t, []string{"hub", "therm"}, names(sink.AncestorsOfType(g, "device")))
	assert.Empty(t, sink.DescendantsOfType(g, policy.Any))

	assert.Equal(t, []string{"hub", "therm", "sink"}, names(hub.ShortestPathTo(g, sink)))
	assert.Len(t, sink.EdgePathFrom(g, hub), 2)
	assert.True(t, hub.IsRoot(g))
	assert.True(t, sink.IsSink(g))
}
