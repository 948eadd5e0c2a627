package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("empty registry passes", func(t *testing.T) {
		r := NewRegistry[int](AddVertex)
		assert.Nil(t, r.Validate(AddVertex, 1))
	})

	t.Run("aggregates every failing message", func(t *testing.T) {
		r := NewRegistry[int](AddVertex, RemoveVertex)
		r.Add(AddVertex, func(n int) error {
			if n < 0 {
				return errors.New("must not be negative")
			}
			return nil
		})
		r.Add(AddVertex, func(int) error { return nil })
		r.Add(AddVertex, func(n int) error {
			if n%2 != 0 {
				return fmt.Errorf("%d is odd", n)
			}
			return nil
		})

		assert.Nil(t, r.Validate(AddVertex, 4))
		assert.Nil(t, r.Validate(RemoveVertex, -3))

		verr := r.Validate(AddVertex, -3)
		require.NotNil(t, verr)
		assert.Equal(t, AddVertex, verr.Kind)
		if diff := cmp.Diff([]string{"must not be negative", "-3 is odd"}, verr.Messages); diff != "" {
			t.Errorf("messages mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "add_vertex validation failed:\n\tmust not be negative\n\t-3 is odd", verr.Error())
	})

	t.Run("remove by handle", func(t *testing.T) {
		r := NewRegistry[string](CreateEdge)
		h1 := r.Add(CreateEdge, func(string) error { return errors.New("first") })
		r.Add(CreateEdge, func(string) error { return errors.New("second") })
		require.Equal(t, 2, r.Len(CreateEdge))

		assert.True(t, r.Remove(h1))
		assert.False(t, r.Remove(h1))
		assert.Equal(t, 1, r.Len(CreateEdge))
		assert.Equal(t, []string{"second"}, r.Validate(CreateEdge, "x").Messages)
	})

	t.Run("unsupported kind panics", func(t *testing.T) {
		r := NewRegistry[string](RelationKinds...)
		assert.Panics(t, func() { r.Add(AddVertex, func(string) error { return nil }) })
		assert.Panics(t, func() { r.Validate(AddToGraph, "x") })
	})
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("disconnect_parent")
	require.NoError(t, err)
	assert.Equal(t, DisconnectParent, k)
	assert.Equal(t, "disconnect_parent", k.String())

	_, err = ParseKind("explode")
	assert.ErrorContains(t, err, "unknown validation kind")
}
