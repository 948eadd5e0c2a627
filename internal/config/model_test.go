package config

import (
	"testing"

	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelValidate(t *testing.T) {
	valid := func() *Model {
		return &Model{
			Types: []*TypeDecl{{Name: "device"}, {Name: "sensor", Extends: []policy.Type{"device"}}},
			Computations: []*Computation{
				{Name: "read", Type: "sensor", Mode: ModeAdd},
				{Name: "filter", After: []string{"read"}, Mode: ModeSet},
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Model)
		want   string
	}{
		{"unknown reference", func(m *Model) { m.Computations[1].After = []string{"missing"} }, `unknown computation "missing"`},
		{"self reference", func(m *Model) { m.Computations[0].Before = []string{"read"} }, `"read" refers to itself`},
		{"duplicate name", func(m *Model) { m.Computations[1].Name = "read"; m.Computations[1].After = nil }, "declared more than once"},
		{"undeclared type", func(m *Model) { m.Computations[0].Type = "plant" }, `undeclared type "plant"`},
		{"undeclared supertype", func(m *Model) { m.Types[1].Extends = []policy.Type{"thing"} }, `extends undeclared type "thing"`},
		{"set with two predecessors", func(m *Model) {
			m.Computations = append(m.Computations, &Computation{Name: "merge", After: []string{"read", "filter"}, Mode: ModeSet})
		}, "more than one `after` reference"},
		{"bad mode", func(m *Model) { m.Computations[0].Mode = "replace" }, `unknown mode "replace"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
