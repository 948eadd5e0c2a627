package computation

import "github.com/specialistvlad/gridgraph/internal/appgraph"

func updatedOf[O comparable](vs []*appgraph.Vertex[*Computation[O]]) []O {
	out := make([]O, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Value().updated)
	}
	return out
}

func containsUpdated[O comparable](vs []*appgraph.Vertex[*Computation[O]], updated O) bool {
	for _, v := range vs {
		if v.Value().updated == updated {
			return true
		}
	}
	return false
}

// UpdatedChildren returns the objects updated right after c.
func (c *Computation[O]) UpdatedChildren(u *Updater[O]) []O {
	return updatedOf(c.vertex.ChildrenIn(u.graph))
}

// UpdatedParents returns the objects updated right before c.
func (c *Computation[O]) UpdatedParents(u *Updater[O]) []O {
	return updatedOf(c.vertex.ParentsIn(u.graph))
}

func (c *Computation[O]) UpdatedDescendants(u *Updater[O]) []O {
	return updatedOf(c.vertex.DescendantsIn(u.graph))
}

func (c *Computation[O]) UpdatedAncestors(u *Updater[O]) []O {
	return updatedOf(c.vertex.AncestorsIn(u.graph))
}

// IsUpdatedAfter reports whether updated is computed at some point after c.
func (c *Computation[O]) IsUpdatedAfter(u *Updater[O], updated O) bool {
	return containsUpdated(c.vertex.DescendantsIn(u.graph), updated)
}

// IsUpdatedBefore reports whether updated is computed at some point before c.
func (c *Computation[O]) IsUpdatedBefore(u *Updater[O], updated O) bool {
	return containsUpdated(c.vertex.AncestorsIn(u.graph), updated)
}

func (c *Computation[O]) IsChildComputation(u *Updater[O], updated O) bool {
	return containsUpdated(c.vertex.ChildrenIn(u.graph), updated)
}

func (c *Computation[O]) IsParentComputation(u *Updater[O], updated O) bool {
	return containsUpdated(c.vertex.ParentsIn(u.graph), updated)
}

// IsUpdatedParallel reports whether updated shares exactly the predecessors
// of c, and so becomes eligible at the same moment.
func (c *Computation[O]) IsUpdatedParallel(u *Updater[O], updated O) bool {
	return containsUpdated(c.vertex.FullSiblingsIn(u.graph), updated)
}
