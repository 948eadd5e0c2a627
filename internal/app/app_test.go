package app_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/gridgraph/internal/app"
	"github.com/specialistvlad/gridgraph/internal/failure"
	"github.com/specialistvlad/gridgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipeline = `
graph "pipeline" {}

type "stage" {}
type "source" { extends = ["stage"] }

computation "read" {
  type = "source"
}

computation "filter" {
  type   = "stage"
  after  = [computation.read]
  mode   = "set"
  weight = 2
}

computation "publish" {
  after = [computation.filter]
}

computation "audit" {
  before = [computation.read]
}
`

func TestRunOrdersComputations(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": pipeline}, func(c *app.Config) {
		c.Cycles = 2
	})
	require.NoError(t, result.Err)

	testutil.AssertRanBefore(t, result, "audit", "read")
	testutil.AssertRanBefore(t, result, "read", "filter")
	testutil.AssertRanBefore(t, result, "filter", "publish")

	for _, name := range []string{"audit", "read", "filter", "publish"} {
		assert.Equal(t, int64(2), result.App.Task(name).Runs(), name)
	}
	assert.Equal(t, int64(2), result.App.Cycles())
	assert.Contains(t, result.LogOutput, "Computation graph built.")
	assert.Contains(t, result.LogOutput, "order=\"[audit read filter publish]\"")
}

func TestGraphStructure(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": pipeline})
	require.NoError(t, result.Err)

	u := result.App.Updater()
	read := u.Find(result.App.Task("read"))
	require.NotNil(t, read)

	assert.ElementsMatch(t, []*app.Task{result.App.Task("filter")}, read.UpdatedChildren(u))
	assert.ElementsMatch(t, []*app.Task{result.App.Task("audit")}, read.UpdatedParents(u))
	assert.True(t, read.IsUpdatedAfter(u, result.App.Task("publish")))
	assert.True(t, read.IsUpdatedBefore(u, result.App.Task("audit")))

	filter := u.Find(result.App.Task("filter"))
	e, ok := u.Graph().Edge(read.Vertex(), filter.Vertex())
	require.True(t, ok)
	assert.Equal(t, 2.0, e.Weight)
}

func TestEmptyGraph(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": `type "stage" {}`})
	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "No computations found in graph")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := testutil.RunIntegrationTestWithContext(ctx, t, map[string]string{"main.hcl": pipeline})
	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, failure.ErrInterrupted)
	assert.ErrorIs(t, result.Err, context.Canceled)
	testutil.AssertComputationSkipped(t, result, "read")
}

func TestStartupRejections(t *testing.T) {
	tests := []struct {
		name string
		hcl  string
		want []string
	}{
		{
			name: "invalid syntax",
			hcl:  `computation "a" {`,
			want: []string{"failed to load configuration", "failed to parse"},
		},
		{
			name: "strict graph without policies",
			hcl: `
graph "strict" { accept_unset = false }
computation "a" {}
`,
			want: []string{"failed to build computation graph", `failed to add computation "a"`},
		},
		{
			name: "graph policy rejects type",
			hcl: `
type "secret" {}
policy "add_vertex" {
  type  = "secret"
  state = reject
}
computation "a" { type = "secret" }
`,
			want: []string{`failed to add computation "a"`, "RejectedByGraphPolicy"},
		},
		{
			name: "edge policy rejects type pair",
			hcl: `
type "raw" {}
type "clean" {}
policy "create_edge" {
  source_type = "clean"
  target_type = "raw"
  state       = reject
}
computation "wash" { type = "clean" }
computation "soil" {
  type  = "raw"
  after = [computation.wash]
}
`,
			want: []string{`computation "soil" cannot run after "wash"`, "RejectedByGraphPolicy"},
		},
		{
			name: "vertex policy rejects parent type",
			hcl: `
type "source" {}
type "sink" {}
vertex_policy "connect_parent" {
  vertex_type = "sink"
  type        = "source"
  state       = reject
}
computation "in" { type = "source" }
computation "out" {
  type  = "sink"
  after = [computation.in]
}
`,
			want: []string{`computation "out" cannot run after "in"`, "RejectedByVertexPolicy"},
		},
		{
			name: "graph validation limits parents",
			hcl: `
validation "create_edge" { max_parents = 1 }
computation "a" {}
computation "b" {}
computation "c" { after = [computation.a, computation.b] }
`,
			want: []string{`computation "c" cannot run after "b"`, "at most 1 parents"},
		},
		{
			name: "vertex validation forbids child type",
			hcl: `
type "leaf" {}
type "final" {}
validation "connect_child" {
  type            = "final"
  forbidden_types = ["leaf"]
}
computation "f" { type = "final" }
computation "l" {
  type  = "leaf"
  after = [computation.f]
}
`,
			want: []string{`computation "l" cannot run after "f"`, `type "leaf" is forbidden here`},
		},
		{
			name: "graph validation forbids vertex type",
			hcl: `
type "banned" {}
validation "add_vertex" { forbidden_types = ["banned"] }
computation "x" { type = "banned" }
`,
			want: []string{`failed to add computation "x"`, "RejectedByGraphValidation"},
		},
		{
			name: "cycle between computations",
			hcl: `
computation "a" { after = [computation.b] }
computation "b" { after = [computation.a] }
`,
			want: []string{"GraphCycleDetected"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": tt.hcl})
			require.Error(t, result.Err)
			assert.Nil(t, result.App)
			assert.Contains(t, result.Err.Error(), "application startup panicked")
			for _, want := range tt.want {
				assert.Contains(t, result.Err.Error(), want)
			}
		})
	}
}
