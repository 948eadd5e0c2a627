package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateCombinators(t *testing.T) {
	all := []State{Accept, Reject, Unset}

	and := map[[2]State]State{
		{Accept, Accept}: Accept, {Accept, Reject}: Reject, {Accept, Unset}: Unset,
		{Reject, Accept}: Reject, {Reject, Reject}: Reject, {Reject, Unset}: Reject,
		{Unset, Accept}: Unset, {Unset, Reject}: Reject, {Unset, Unset}: Unset,
	}
	or := map[[2]State]State{
		{Accept, Accept}: Accept, {Accept, Reject}: Accept, {Accept, Unset}: Accept,
		{Reject, Accept}: Accept, {Reject, Reject}: Reject, {Reject, Unset}: Unset,
		{Unset, Accept}: Accept, {Unset, Reject}: Reject, {Unset, Unset}: Unset,
	}
	xor := map[[2]State]State{
		{Accept, Accept}: Reject, {Accept, Reject}: Accept, {Accept, Unset}: Unset,
		{Reject, Accept}: Accept, {Reject, Reject}: Reject, {Reject, Unset}: Unset,
		{Unset, Accept}: Unset, {Unset, Reject}: Unset, {Unset, Unset}: Unset,
	}

	for _, a := range all {
		for _, b := range all {
			t.Run(a.String()+"_"+b.String(), func(t *testing.T) {
				assert.Equal(t, and[[2]State{a, b}], a.And(b), "and")
				assert.Equal(t, or[[2]State{a, b}], a.Or(b), "or")
				assert.Equal(t, xor[[2]State{a, b}], a.Xor(b), "xor")
			})
		}
	}

	assert.Equal(t, Reject, Accept.Not())
	assert.Equal(t, Accept, Reject.Not())
	assert.Equal(t, Unset, Unset.Not())
}

func TestStatePermits(t *testing.T) {
	assert.True(t, Accept.Permits(false))
	assert.False(t, Reject.Permits(true))
	assert.False(t, Unset.Permits(false))
	assert.True(t, Unset.Permits(true))
}

func TestParseState(t *testing.T) {
	s, err := ParseState(" Accept ")
	require.NoError(t, err)
	assert.Equal(t, Accept, s)

	s, err = ParseState("")
	require.NoError(t, err)
	assert.Equal(t, Unset, s)

	_, err = ParseState("maybe")
	assert.ErrorContains(t, err, "unknown policy state")
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(GraphScope, "create_edge")
	require.NoError(t, err)
	assert.Equal(t, CreateEdge, k)
	assert.Equal(t, Binary, k.Arity())

	k, err = ParseKind(VertexScope, "add_to_graph")
	require.NoError(t, err)
	assert.Equal(t, AddToGraph, k)
	assert.Equal(t, VertexScope, k.Scope())

	_, err = ParseKind(GraphScope, "connect_child")
	assert.ErrorContains(t, err, "unknown graph policy")

	assert.Len(t, Kinds(GraphScope), 10)
	assert.Len(t, Kinds(VertexScope), 15)
}
