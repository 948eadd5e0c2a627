package failure

// Domain names the subset of kinds a family of operations can report.
// Implementations are zero-size marker types.
type Domain interface {
	Kinds() Set
	Name() string
}

var rejected = SetOf(RejectedByGraphPolicy, RejectedByGraphValidation, RejectedByVertexPolicy, RejectedByVertexValidation)

var (
	vertexAdditionKinds = rejected.Union(SetOf(VertexAlreadyPresent))
	vertexRemovalKinds  = rejected.Union(SetOf(VertexNotPresent))
	edgeAdditionKinds   = rejected.Union(SetOf(GraphCycleDetected, EdgeAlreadyExists, VertexNotPresent))
	edgeRemovalKinds    = rejected.Union(SetOf(EdgeNotPresent, VertexNotPresent))
	connectionKinds     = edgeAdditionKinds.Union(SetOf(SelfReference))
	additionKinds       = connectionKinds.Union(SetOf(VertexAlreadyPresent))
	disconnectionKinds  = edgeRemovalKinds.Union(SetOf(SelfReference))
	rewireKinds         = additionKinds.Union(SetOf(EdgeNotPresent))
)

// VertexAddition covers adding a vertex to a graph.
type VertexAddition struct{}

func (VertexAddition) Kinds() Set   { return vertexAdditionKinds }
func (VertexAddition) Name() string { return "vertex addition" }

// VertexRemoval covers removing a vertex from a graph.
type VertexRemoval struct{}

func (VertexRemoval) Kinds() Set   { return vertexRemovalKinds }
func (VertexRemoval) Name() string { return "vertex removal" }

// EdgeAddition covers creating an edge between two present vertices.
type EdgeAddition struct{}

func (EdgeAddition) Kinds() Set   { return edgeAdditionKinds }
func (EdgeAddition) Name() string { return "edge addition" }

// EdgeRemoval covers removing an existing edge.
type EdgeRemoval struct{}

func (EdgeRemoval) Kinds() Set   { return edgeRemovalKinds }
func (EdgeRemoval) Name() string { return "edge removal" }

// Connection covers connecting a vertex to a child or parent.
type Connection struct{}

func (Connection) Kinds() Set   { return connectionKinds }
func (Connection) Name() string { return "connection" }

// Addition covers adding a child or parent that may not be in the graph yet.
type Addition struct{}

func (Addition) Kinds() Set   { return additionKinds }
func (Addition) Name() string { return "addition" }

// Disconnection covers disconnecting a child or parent.
type Disconnection struct{}

func (Disconnection) Kinds() Set   { return disconnectionKinds }
func (Disconnection) Name() string { return "disconnection" }

// Removal covers removing a child or parent vertex from the graph.
type Removal struct{}

func (Removal) Kinds() Set   { return disconnectionKinds }
func (Removal) Name() string { return "removal" }

// Rewire covers adopting a child or parent and detaching it from every other
// relative on the same side.
type Rewire struct{}

func (Rewire) Kinds() Set   { return rewireKinds }
func (Rewire) Name() string { return "rewire" }

// KindsOf returns the kinds of domain D.
func KindsOf[D Domain]() Set {
	var d D
	return d.Kinds()
}
