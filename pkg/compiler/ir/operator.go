package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/table/schema"
)

// Operator is a pipeline-stage node: it has zero or more parent
// operators feeding it rows and an optional resolved output relation.
//
// Parent references are stored as ids and resolved through the owning
// graph on every access, never cached as pointers. The parent count of
// an operator never changes once Init has run; column resolution depends
// on the stability of parent indexes.
type Operator interface {
	Node

	// Parents returns the ordered parent operators.
	Parents() []Operator
	// HasParents reports whether the operator has at least one parent.
	HasParents() bool
	// IsChildOf reports whether parent appears in the parent list.
	IsChildOf(parent Operator) bool
	// AddParent appends parent to the parent list and records the
	// corresponding DAG edge. The typed reference and the edge are kept
	// in lockstep; a divergence is a bug in this package.
	AddParent(parent Operator) error
	// RemoveParent removes parent and its DAG edge.
	RemoveParent(parent Operator) error
	// ReplaceParent swaps old for new in place, preserving the parent
	// index. Errors if old is not currently a parent.
	ReplaceParent(old, new Operator) error
	// CopyParentsFrom re-creates src's parent references on this
	// operator, resolving ids through this operator's own graph.
	CopyParentsFrom(src Operator) error

	// Relation returns the operator's output schema.
	Relation() schema.Relation
	// SetRelation sets the output schema and marks it resolved.
	SetRelation(r schema.Relation)
	// RelationResolved reports whether SetRelation has been called.
	RelationResolved() bool

	// IsSource reports whether this kind originates data (and therefore
	// can never have parents).
	IsSource() bool
	// IsBlocking reports whether this kind must consume all input before
	// emitting output.
	IsBlocking() bool

	// Children returns the operators that consume this operator's
	// output, in edge insertion order.
	Children() []Operator

	// ToProto lowers this operator into its plan-operator message.
	ToProto() (*planpb.Operator, error)
}

type baseOperator struct {
	baseNode

	parentIDs   []int64
	relation    schema.Relation
	relationSet bool
}

func (*baseOperator) IsOperator() bool   { return true }
func (*baseOperator) IsExpression() bool { return false }

func (o *baseOperator) IsSource() bool   { return sourceKinds[o.kind] }
func (o *baseOperator) IsBlocking() bool { return blockingKinds[o.kind] }

func (o *baseOperator) HasParents() bool { return len(o.parentIDs) > 0 }

func (o *baseOperator) Parents() []Operator {
	out := make([]Operator, len(o.parentIDs))
	for i, id := range o.parentIDs {
		node := o.graph.Get(id)
		op, ok := node.(Operator)
		if !ok {
			panic(fmt.Sprintf("ir: parent %d of operator %d is missing or not an operator", id, o.id))
		}
		out[i] = op
	}
	return out
}

func (o *baseOperator) IsChildOf(parent Operator) bool {
	for _, id := range o.parentIDs {
		if id == parent.ID() {
			return true
		}
	}
	return false
}

func (o *baseOperator) AddParent(parent Operator) error {
	if o.IsSource() {
		panic(fmt.Sprintf("ir: %s operators cannot have parents", o.kind))
	}
	if o.IsChildOf(parent) {
		panic(fmt.Sprintf("ir: operator %d already has parent %d", o.id, parent.ID()))
	}
	o.parentIDs = append(o.parentIDs, parent.ID())
	return o.graph.addEdgeByID(parent.ID(), o.id)
}

func (o *baseOperator) RemoveParent(parent Operator) error {
	idx := -1
	for i, id := range o.parentIDs {
		if id == parent.ID() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NodeErrorf(o, "operator %d is not a parent of operator %d", parent.ID(), o.id)
	}
	o.parentIDs = append(o.parentIDs[:idx], o.parentIDs[idx+1:]...)
	return o.graph.deleteEdgeByID(parent.ID(), o.id)
}

func (o *baseOperator) ReplaceParent(old, new Operator) error {
	idx := -1
	for i, id := range o.parentIDs {
		if id == old.ID() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NodeErrorf(o, "operator %d is not a parent of operator %d", old.ID(), o.id)
	}
	o.parentIDs[idx] = new.ID()
	if err := o.graph.deleteEdgeByID(old.ID(), o.id); err != nil {
		return err
	}
	return o.graph.addEdgeByID(new.ID(), o.id)
}

func (o *baseOperator) CopyParentsFrom(src Operator) error {
	if len(o.parentIDs) != 0 {
		panic(fmt.Sprintf("ir: operator %d already has parents", o.id))
	}
	for _, parent := range src.Parents() {
		node := o.graph.Get(parent.ID())
		op, ok := node.(Operator)
		if !ok {
			return NodeErrorf(o, "parent %d has not been copied into the target graph", parent.ID())
		}
		if err := o.AddParent(op); err != nil {
			return err
		}
	}
	return nil
}

func (o *baseOperator) Relation() schema.Relation { return o.relation }
func (o *baseOperator) RelationResolved() bool    { return o.relationSet }

func (o *baseOperator) SetRelation(r schema.Relation) {
	o.relation = r
	o.relationSet = true
}

func (o *baseOperator) Children() []Operator {
	var out []Operator
	for _, id := range o.graph.dag.Children(o.id) {
		if op, ok := o.graph.Get(id).(Operator); ok {
			out = append(out, op)
		}
	}
	return out
}

// copyFromOperator copies the operator-level state shared by all
// operator kinds. Parents are deliberately not copied here: whole-graph
// cloning wires them up via CopyParentsFrom once all operators exist,
// and localized node duplication must not drag the upstream pipeline
// along with it.
func (o *baseOperator) copyFromOperator(src Operator) {
	o.copyFromBase(src)
	o.relation = src.Relation()
	o.relationSet = src.RelationResolved()
}

// relationColumns emits a Column message per output column, referencing
// the operator's sole parent. Shared by pass-through operators (Filter,
// Limit).
func (o *baseOperator) relationColumns() ([]*planpb.Column, error) {
	parents := o.Parents()
	if len(parents) != 1 {
		return nil, NodeErrorf(o, "expected exactly one parent, got %d", len(parents))
	}
	parent := parents[0]
	cols := make([]*planpb.Column, 0, o.relation.NumColumns())
	for _, name := range o.relation.ColNames() {
		idx := parent.Relation().ColIndex(name)
		if idx < 0 {
			return nil, NodeErrorf(o, "column %q is not produced by parent operator %d", name, parent.ID())
		}
		cols = append(cols, &planpb.Column{Node: parent.ID(), Index: int64(idx)})
	}
	return cols, nil
}
