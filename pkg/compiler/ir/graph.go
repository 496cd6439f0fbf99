package ir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/korvus-io/korvus/pkg/util/dag"
)

// IR is the arena that owns every node of one query's intermediate
// representation. Nodes are created through the Create helpers, addressed
// by dense int64 ids, and related through a single DAG that carries both
// operator-to-operator data flow and operator-to-expression ownership.
type IR struct {
	dag    *dag.DAG
	nodes  map[int64]Node
	nextID int64

	queryID uuid.UUID
	logger  log.Logger
}

// Option configures a new IR.
type Option func(*IR)

// WithLogger sets the debug logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(g *IR) { g.logger = logger }
}

// WithQueryID pins the compilation's query id instead of generating one.
func WithQueryID(id uuid.UUID) Option {
	return func(g *IR) { g.queryID = id }
}

// New returns an empty IR with a fresh query id.
func New(opts ...Option) *IR {
	g := &IR{
		dag:     dag.New(),
		nodes:   map[int64]Node{},
		queryID: uuid.New(),
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// QueryID returns the id of the compilation this graph belongs to.
func (g *IR) QueryID() uuid.UUID { return g.queryID }

// Get returns the node with the given id, or nil.
func (g *IR) Get(id int64) Node { return g.nodes[id] }

// HasNode reports whether id names a live node.
func (g *IR) HasNode(id int64) bool { return g.nodes[id] != nil }

// Size returns the number of live nodes.
func (g *IR) Size() int { return len(g.nodes) }

// register assigns the next dense id to n and adds it to the arena.
func (g *IR) register(n Node, kind NodeKind) {
	g.registerWithID(n, kind, g.nextID)
}

// registerWithID adds n under a caller-chosen id. Cross-graph copies use
// it to preserve source ids; the id counter always moves past it.
func (g *IR) registerWithID(n Node, kind NodeKind, id int64) {
	if g.HasNode(id) {
		panic(fmt.Sprintf("ir: node id %d is already in use", id))
	}
	n.attach(g, id, kind)
	g.nodes[id] = n
	g.dag.AddNode(id)
	if id >= g.nextID {
		g.nextID = id + 1
	}
	level.Debug(g.logger).Log("msg", "created node", "id", id, "kind", kind)
}

// AddEdge records a parent-to-child edge between two live nodes.
func (g *IR) AddEdge(parent, child Node) error {
	return g.addEdgeByID(parent.ID(), child.ID())
}

func (g *IR) addEdgeByID(parent, child int64) error {
	return g.dag.AddEdge(parent, child)
}

// HasEdge reports whether a parent-to-child edge exists.
func (g *IR) HasEdge(parent, child Node) bool {
	return g.dag.HasEdge(parent.ID(), child.ID())
}

// DeleteEdge removes a parent-to-child edge.
func (g *IR) DeleteEdge(parent, child Node) error {
	return g.deleteEdgeByID(parent.ID(), child.ID())
}

func (g *IR) deleteEdgeByID(parent, child int64) error {
	return g.dag.DeleteEdge(parent, child)
}

// DeleteNode removes an orphaned node. Nodes that still have dependents
// must go through DeleteNodeAndChildren or have their edges rewired
// first.
func (g *IR) DeleteNode(id int64) error {
	n := g.Get(id)
	if n == nil {
		return fmt.Errorf("ir: no node %d to delete", id)
	}
	if children := g.dag.Children(id); len(children) > 0 {
		return NodeErrorf(n, "cannot delete node %d, %d nodes still depend on it", id, len(children))
	}
	g.dag.DeleteNode(id)
	delete(g.nodes, id)
	level.Debug(g.logger).Log("msg", "deleted node", "id", id)
	return nil
}

// DeleteNodeAndChildren removes a node and, recursively, every child
// that has no other parent. Children shared with other nodes survive.
func (g *IR) DeleteNodeAndChildren(id int64) error {
	n := g.Get(id)
	if n == nil {
		return fmt.Errorf("ir: no node %d to delete", id)
	}
	for _, child := range g.dag.Children(id) {
		if err := g.deleteEdgeByID(id, child); err != nil {
			return err
		}
		if len(g.dag.Parents(child)) == 0 {
			if err := g.DeleteNodeAndChildren(child); err != nil {
				return err
			}
		}
	}
	return g.DeleteNode(id)
}

// Prune removes the given nodes along with every edge that touches
// them. All ids must name live nodes; nothing is removed otherwise.
func (g *IR) Prune(ids []int64) error {
	for _, id := range ids {
		if !g.HasNode(id) {
			return fmt.Errorf("ir: no node %d to prune", id)
		}
	}
	for _, id := range ids {
		if !g.HasNode(id) {
			continue
		}
		if err := g.dag.DeleteNode(id); err != nil {
			return err
		}
		delete(g.nodes, id)
		level.Debug(g.logger).Log("msg", "pruned node", "id", id)
	}
	return nil
}

// PruneOrphanedExpressions removes every expression no operator
// reaches, transitively. Rewrite passes that detach subtrees call it
// once at the end instead of bookkeeping each orphan. Returns the
// number of nodes removed.
func (g *IR) PruneOrphanedExpressions() (int, error) {
	before := len(g.nodes)
	for {
		var orphans []int64
		for _, id := range g.dag.Nodes() {
			if g.Get(id).IsOperator() {
				continue
			}
			if len(g.dag.Parents(id)) == 0 {
				orphans = append(orphans, id)
			}
		}
		if len(orphans) == 0 {
			return before - len(g.nodes), nil
		}
		for _, id := range orphans {
			if err := g.DeleteNodeAndChildren(id); err != nil {
				return before - len(g.nodes), err
			}
		}
	}
}

// FindNodesOfType returns all live nodes of the given kind, in
// topological order.
func (g *IR) FindNodesOfType(kind NodeKind) []Node {
	return g.FindNodesMatching(func(n Node) bool { return n.Kind() == kind })
}

// FindNodesMatching returns all live nodes accepted by pred, in
// topological order. The order is a contract: rewrite passes depend on
// seeing a node before anything downstream of it.
func (g *IR) FindNodesMatching(pred func(Node) bool) []Node {
	var out []Node
	for _, id := range g.dag.TopologicalSort() {
		if n := g.Get(id); n != nil && pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// GetSources returns the source operators, in topological order.
func (g *IR) GetSources() []Operator {
	return g.operatorsMatching(func(op Operator) bool { return op.IsSource() })
}

// GetSinks returns the MemorySink operators, in topological order.
// Other terminal kinds (GRPCSink) are not query results and are
// excluded.
func (g *IR) GetSinks() []Operator {
	return g.operatorsMatching(func(op Operator) bool { return op.Kind() == KindMemorySink })
}

func (g *IR) operatorsMatching(pred func(Operator) bool) []Operator {
	var out []Operator
	for _, id := range g.dag.TopologicalSort() {
		if op, ok := g.Get(id).(Operator); ok && pred(op) {
			out = append(out, op)
		}
	}
	return out
}

// TopoOperators returns every operator in topological order, sources
// first. The order is deterministic for a given graph.
func (g *IR) TopoOperators() []Operator {
	var out []Operator
	for _, id := range g.dag.TopologicalSort() {
		if op, ok := g.Get(id).(Operator); ok {
			out = append(out, op)
		}
	}
	return out
}

// VisitDownstream calls fn for every operator reachable from op,
// including op itself, in pre-order. Expression nodes along the way are
// skipped. Traversal stops at the first error.
func (g *IR) VisitDownstream(op Operator, fn func(Operator) error) error {
	return g.dag.Walk(op.ID(), func(id int64) error {
		if o, ok := g.Get(id).(Operator); ok {
			return fn(o)
		}
		return nil
	}, dag.PreOrderWalk)
}

// HandleDuplicateParents makes a parent list usable by multi-parent
// operators, which reject the same parent twice. Each repeat is hidden
// behind a fresh pass-through Map over the repeated operator.
func (g *IR) HandleDuplicateParents(parents []Operator) ([]Operator, error) {
	seen := map[int64]bool{}
	out := make([]Operator, 0, len(parents))
	for _, p := range parents {
		if !seen[p.ID()] {
			seen[p.ID()] = true
			out = append(out, p)
			continue
		}
		m, err := g.makePassThroughMap(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// makePassThroughMap builds a Map that re-emits every column of parent
// unchanged.
func (g *IR) makePassThroughMap(parent Operator) (*Map, error) {
	if !parent.RelationResolved() {
		return nil, NodeErrorf(parent, "operator %d has no resolved relation", parent.ID())
	}
	rel := parent.Relation()
	colExprs := make([]ColumnExpression, 0, rel.NumColumns())
	for _, name := range rel.ColNames() {
		col, err := g.CreateColumn(name, 0)
		if err != nil {
			return nil, err
		}
		colExprs = append(colExprs, ColumnExpression{Name: name, Expr: col})
	}
	m, err := g.CreateMap(parent, colExprs, false)
	if err != nil {
		return nil, err
	}
	m.SetRelation(rel)
	return m, nil
}

// DebugString renders every node with its outgoing edges, ordered by id.
func (g *IR) DebugString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "IR(nodes=%d)\n", len(g.nodes))
	for _, id := range g.dag.Nodes() {
		children := g.dag.Children(id)
		sorted := append([]int64(nil), children...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		fmt.Fprintf(&sb, "  %s -> %v\n", g.Get(id).DebugString(), sorted)
	}
	return sb.String()
}
