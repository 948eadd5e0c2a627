package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/gridgraph/internal/appgraph"
	"github.com/specialistvlad/gridgraph/internal/computation"
	"github.com/specialistvlad/gridgraph/internal/config"
	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/policy"
	"github.com/specialistvlad/gridgraph/internal/validation"
)

type (
	taskUpdater = computation.Updater[*Task]
	taskGraph   = appgraph.Graph[*computation.Computation[*Task]]
	taskVertex  = appgraph.Vertex[*computation.Computation[*Task]]
)

// build turns the configuration model into a populated computation graph.
func (a *App) build(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	m := a.model

	hierarchy := policy.NewHierarchy()
	for _, t := range m.Types {
		if err := hierarchy.Declare(t.Name, t.Extends...); err != nil {
			return fmt.Errorf("failed to declare type %q: %w", t.Name, err)
		}
	}
	a.hierarchy = hierarchy
	logger.Debug("Type hierarchy declared.", "types", len(m.Types))

	a.updater = computation.NewUpdater(computation.Kind(m.Graph.Name), execute,
		computation.WithTypeOf(func(t *Task) policy.Type { return policy.TypeOf(t) }),
		computation.WithAdmissionLimit[*Task](a.config.AdmissionLimit),
		computation.WithGraphOptions[*Task](
			appgraph.WithGraphAcceptUnset(m.Graph.AcceptUnset),
			appgraph.WithAlgorithm(m.Graph.Algorithm),
			appgraph.WithHierarchy(hierarchy),
		),
	)
	g := a.updater.Graph()

	for _, p := range m.Policies {
		if p.Scope == policy.GraphScope {
			applyPolicy(g.Policies(), p)
		}
	}
	for _, v := range m.Validations {
		a.addGraphCheck(g, v)
	}
	logger.Debug("Graph policies and validations installed.", "graph", g.Name())

	a.tasks = make(map[string]*Task, len(m.Computations))
	for _, c := range m.Computations {
		task := &Task{Name: c.Name, Type: c.Type}
		opts := []computation.ComputationOption{computation.WithComputationName(c.Name)}
		if c.AdmissionLimit > 0 {
			opts = append(opts, computation.WithAdmission(c.AdmissionLimit))
		}
		comp := a.updater.NewComputation(task, opts...)
		a.configureVertex(g, comp.Vertex())

		if f := g.AddVertex(ctx, comp.Vertex()); f != nil {
			return fmt.Errorf("failed to add computation %q: %w", c.Name, f)
		}
		a.tasks[c.Name] = task
		logger.Debug("Computation added.", "computation", c.Name, "type", c.Type)
	}

	for _, c := range m.Computations {
		if err := a.link(ctx, c); err != nil {
			return err
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return fmt.Errorf("failed to order computations: %w", err)
	}
	names := make([]string, len(order))
	for i, v := range order {
		names[i] = v.Name()
	}
	logger.Info("Computation graph built.", "graph", g.Name(), "computations", len(order), "order", names)
	return nil
}

// link creates the ordering edges declared by c.
func (a *App) link(ctx context.Context, c *config.Computation) error {
	task := a.tasks[c.Name]
	self := a.updater.Find(task)

	for _, name := range c.After {
		parent := a.updater.Find(a.tasks[name])
		if c.Mode == config.ModeSet {
			if _, f := parent.SetAfter(ctx, a.updater, task); f != nil {
				return fmt.Errorf("computation %q cannot run after %q: %w", c.Name, name, f)
			}
		} else if _, f := parent.AddAfter(ctx, a.updater, task); f != nil {
			return fmt.Errorf("computation %q cannot run after %q: %w", c.Name, name, f)
		}
		if err := a.updater.Graph().SetEdgeWeight(parent.Vertex(), self.Vertex(), c.Weight); err != nil {
			return fmt.Errorf("failed to weigh edge %s -> %s: %w", name, c.Name, err)
		}
	}
	for _, name := range c.Before {
		if _, f := self.AddAfter(ctx, a.updater, a.tasks[name]); f != nil {
			return fmt.Errorf("computation %q cannot run before %q: %w", c.Name, name, f)
		}
	}
	return nil
}

// applyPolicy records p in reg according to the arity of its kind.
func applyPolicy(reg *policy.Registry, p *config.Policy) {
	switch p.Kind.Arity() {
	case policy.Nullary:
		reg.SetNullary(p.Kind, p.State)
	case policy.Unary:
		reg.SetType(p.Kind, p.Type, p.State)
	case policy.Binary:
		reg.SetTypePair(p.Kind, p.SourceType, p.TargetType, p.State)
	}
}

// configureVertex installs the vertex policies and validations that apply to
// the type of v.
func (a *App) configureVertex(g *taskGraph, v *taskVertex) {
	for _, p := range a.model.Policies {
		if p.Scope != policy.VertexScope || !a.matches(v.PolicyType(), p.VertexType) {
			continue
		}
		applyPolicy(v.Policies(), p)
	}
	for _, val := range a.model.Validations {
		if !a.matches(v.PolicyType(), val.Type) {
			continue
		}
		switch {
		case slices.Contains(validation.RelationKinds, val.Kind):
			v.AddRelationCheck(val.Kind, a.relationCheck(g, v, val))
		case slices.Contains(validation.MembershipKinds, val.Kind):
			v.AddMembershipCheck(val.Kind, func(target *taskGraph) error {
				return a.forbidden(target.PolicyType(), val.ForbiddenTypes)
			})
		}
	}
}

func (a *App) addGraphCheck(g *taskGraph, val *config.Validation) {
	switch {
	case slices.Contains(validation.GraphVertexKinds, val.Kind):
		g.AddVertexCheck(val.Kind, func(v *taskVertex) error {
			if !a.matches(v.PolicyType(), val.Type) {
				return nil
			}
			return a.forbidden(v.PolicyType(), val.ForbiddenTypes)
		})
	case slices.Contains(validation.GraphEdgeKinds, val.Kind):
		g.AddEdgeCheck(val.Kind, func(e appgraph.Endpoints[*computation.Computation[*Task]]) error {
			if !a.matches(e.Target.PolicyType(), val.Type) {
				return nil
			}
			if err := a.forbidden(e.Target.PolicyType(), val.ForbiddenTypes); err != nil {
				return err
			}
			if val.Kind != validation.CreateEdge {
				return nil
			}
			return limits(g, e.Source, e.Target, val)
		})
	}
}

func (a *App) relationCheck(g *taskGraph, self *taskVertex, val *config.Validation) validation.Predicate[*taskVertex] {
	return func(other *taskVertex) error {
		if err := a.forbidden(other.PolicyType(), val.ForbiddenTypes); err != nil {
			return err
		}
		switch val.Kind {
		case validation.ConnectParent:
			return limits(g, other, self, val)
		case validation.ConnectChild:
			return limits(g, self, other, val)
		}
		return nil
	}
}

// limits checks that one more edge from source to target stays within the
// parent and child limits of val.
func limits(g *taskGraph, source, target *taskVertex, val *config.Validation) error {
	if val.MaxParents > 0 {
		if parents, _ := g.Parents(target); len(parents) >= val.MaxParents {
			return fmt.Errorf("%s already has %d of at most %d parents", target, len(parents), val.MaxParents)
		}
	}
	if val.MaxChildren > 0 {
		if children, _ := g.Children(source); len(children) >= val.MaxChildren {
			return fmt.Errorf("%s already has %d of at most %d children", source, len(children), val.MaxChildren)
		}
	}
	return nil
}

func (a *App) forbidden(t policy.Type, forbidden []policy.Type) error {
	for _, f := range forbidden {
		if a.hierarchy.IsA(t, f) {
			return fmt.Errorf("type %q is forbidden here", t)
		}
	}
	return nil
}

// matches reports whether t falls under filter. An empty filter matches every
// type.
func (a *App) matches(t, filter policy.Type) bool {
	return filter == "" || a.hierarchy.IsA(t, filter)
}
