package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/gridgraph/internal/bggohcl"
	"github.com/specialistvlad/gridgraph/internal/config"
	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/fsutil"
)

// DefaultGraphName names the graph when no `graph` block is present.
const DefaultGraphName = "gridgraph"

// A configured graph accepts unset policies unless `accept_unset = false`.
const defaultAcceptUnset = true

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file under paths, merges their blocks into one
// model and validates the result.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{Graph: &config.Graph{Name: DefaultGraphName, AcceptUnset: defaultAcceptUnset}}
	parser := hclparse.NewParser()
	var graphBlocks hcl.Blocks

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		content, remain, diags := hclFile.Body.PartialContent(graphSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		graphBlocks = append(graphBlocks, content.Blocks...)

		var root fileRoot
		if diags := gohcl.DecodeBody(remain, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := l.merge(ctx, model, &root); err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	block, diags := bggohcl.FindUniqueBlock(graphBlocks, "graph")
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid graph configuration: %w", diags)
	}
	if block != nil {
		graph, err := l.translateGraph(ctx, block)
		if err != nil {
			return nil, err
		}
		model.Graph = graph
	}

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("HCL loading complete.",
		"graph", model.Graph.Name,
		"types", len(model.Types),
		"policies", len(model.Policies),
		"validations", len(model.Validations),
		"computations", len(model.Computations),
	)
	return model, nil
}

// merge translates the blocks of one file and appends them to model.
func (l *Loader) merge(ctx context.Context, model *config.Model, root *fileRoot) error {
	for _, t := range root.Types {
		model.Types = append(model.Types, translateType(t))
	}
	for _, p := range root.Policies {
		pol, err := translatePolicy(ctx, p)
		if err != nil {
			return err
		}
		model.Policies = append(model.Policies, pol)
	}
	for _, p := range root.VertexPolicies {
		pol, err := translateVertexPolicy(ctx, p)
		if err != nil {
			return err
		}
		model.Policies = append(model.Policies, pol)
	}
	for _, v := range root.Validations {
		val, err := translateValidation(v)
		if err != nil {
			return err
		}
		model.Validations = append(model.Validations, val)
	}
	for _, c := range root.Computations {
		comp, err := translateComputation(ctx, c)
		if err != nil {
			return err
		}
		model.Computations = append(model.Computations, comp)
	}
	return nil
}
