package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/gridgraph/internal/config"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.hcl": `
graph "pipeline" {
  algorithm = object_and_type
}

type "device" {}
type "sensor" { extends = ["device"] }

policy "create_edge" {
  source_type = "sensor"
  target_type = "sensor"
  state       = reject
}

policy "query_vertices" {
  state = "accept"
}

vertex_policy "connect_parent" {
  vertex_type = "sensor"
  type        = "device"
  state       = accept
}

validation "create_edge" {
  max_parents     = 2
  forbidden_types = ["sensor"]
}
`,
		"computations/flow.hcl": `
computation "read" {
  type            = "sensor"
  admission_limit = 2
}

computation "filter" {
  after  = [computation.read]
  mode   = "set"
  weight = 1.5
}

computation "publish" {
  before = [computation.filter]
}
`,
	})

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	want := &config.Model{
		Graph: &config.Graph{Name: "pipeline", AcceptUnset: true, Algorithm: policy.ObjectAndType},
		Types: []*config.TypeDecl{
			{Name: "device"},
			{Name: "sensor", Extends: []policy.Type{"device"}},
		},
		Policies: []*config.Policy{
			{Scope: policy.GraphScope, Kind: policy.CreateEdge, SourceType: "sensor", TargetType: "sensor", State: policy.Reject},
			{Scope: policy.GraphScope, Kind: policy.QueryVertices, State: policy.Accept},
			{Scope: policy.VertexScope, Kind: policy.ConnectParent, VertexType: "sensor", Type: "device", State: policy.Accept},
		},
		Validations: []*config.Validation{
			{Kind: validation.CreateEdge, MaxParents: 2, ForbiddenTypes: []policy.Type{"sensor"}},
		},
		Computations: []*config.Computation{
			{Name: "read", Type: "sensor", Mode: config.ModeAdd, AdmissionLimit: 2, Weight: 1},
			{Name: "filter", After: []string{"read"}, Mode: config.ModeSet, Weight: 1.5},
			{Name: "publish", Before: []string{"filter"}, Mode: config.ModeAdd, Weight: 1},
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.hcl": `computation "only" {}`})
	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, &config.Graph{Name: DefaultGraphName, AcceptUnset: true}, model.Graph)
	require.Len(t, model.Computations, 1)
	assert.Equal(t, config.ModeAdd, model.Computations[0].Mode)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "no hcl files",
			files: map[string]string{"README.md": "# nothing here"},
			want:  "no .hcl files found",
		},
		{
			name:  "syntax error",
			files: map[string]string{"main.hcl": `computation "a" {`},
			want:  "failed to parse HCL file",
		},
		{
			name: "duplicate graph across files",
			files: map[string]string{
				"a.hcl": `graph "one" {}`,
				"b.hcl": `graph "two" {}`,
			},
			want: `Duplicate "graph" block`,
		},
		{
			name:  "unknown block",
			files: map[string]string{"main.hcl": `step "print" "a" {}`},
			want:  "failed to decode HCL file",
		},
		{
			name:  "unknown policy kind",
			files: map[string]string{"main.hcl": `policy "teleport" { state = accept }`},
			want:  `unknown graph policy "teleport"`,
		},
		{
			name:  "vertex kind in graph block",
			files: map[string]string{"main.hcl": `policy "connect_child" { state = accept }`},
			want:  `unknown graph policy "connect_child"`,
		},
		{
			name:  "bad state keyword",
			files: map[string]string{"main.hcl": `policy "add_vertex" { state = maybe }`},
			want:  "Unsupported keyword",
		},
		{
			name:  "binary policy with single type",
			files: map[string]string{"main.hcl": "policy \"create_edge\" {\n  type = \"x\"\n  state = reject\n}"},
			want:  "takes `source_type` and `target_type`",
		},
		{
			name:  "bad accept_unset",
			files: map[string]string{"main.hcl": `graph "g" { accept_unset = "maybe" }`},
			want:  "failed to decode graph block",
		},
		{
			name:  "bad algorithm",
			files: map[string]string{"main.hcl": `graph "g" { algorithm = whatever }`},
			want:  "Unsupported keyword",
		},
		{
			name:  "bad reference",
			files: map[string]string{"main.hcl": `computation "a" { after = [step.b] }`},
			want:  "computation.<name>",
		},
		{
			name:  "dangling reference",
			files: map[string]string{"main.hcl": `computation "a" { after = [computation.b] }`},
			want:  `unknown computation "b"`,
		},
		{
			name:  "zero admission",
			files: map[string]string{"main.hcl": `computation "a" { admission_limit = 0 }`},
			want:  "admission_limit must be at least 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, tt.files)
			_, err := NewLoader().Load(context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadStrictGraph(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.hcl": `graph "strict" { accept_unset = false }`})
	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, &config.Graph{Name: "strict"}, model.Graph)
}
