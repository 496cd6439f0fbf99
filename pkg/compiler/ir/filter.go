package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

// Filter keeps the rows for which its predicate evaluates true. The
// output relation is the parent's relation unchanged.
type Filter struct {
	baseOperator

	exprID int64
}

var _ Operator = (*Filter)(nil)

// Init attaches the filter beneath parent with the given predicate.
func (f *Filter) Init(parent Operator, predicate Expression) error {
	if err := f.AddParent(parent); err != nil {
		return err
	}
	f.exprID = predicate.ID()
	return f.graph.addEdgeByID(f.id, predicate.ID())
}

func (f *Filter) DebugString() string {
	return fmt.Sprintf("Filter(id=%d, expr=%d)", f.id, f.exprID)
}

// Expression returns the predicate.
func (f *Filter) Expression() Expression {
	expr, ok := f.graph.Get(f.exprID).(Expression)
	if !ok {
		panic(fmt.Sprintf("ir: predicate %d of filter %d is missing or not an expression", f.exprID, f.id))
	}
	return expr
}

// SetExpression replaces the predicate, rewiring the ownership edge.
func (f *Filter) SetExpression(predicate Expression) error {
	if err := f.graph.deleteEdgeByID(f.id, f.exprID); err != nil {
		return err
	}
	f.exprID = predicate.ID()
	return f.graph.addEdgeByID(f.id, predicate.ID())
}

func (f *Filter) ToProto() (*planpb.Operator, error) {
	expr := f.Expression()
	if expr.TypeResolved() && expr.DataType() != typespb.Boolean {
		return nil, NodeErrorf(f, "filter predicate must be boolean, got %s", expr.DataType())
	}
	pb, err := expr.ToProto()
	if err != nil {
		return nil, err
	}
	cols, err := f.relationColumns()
	if err != nil {
		return nil, err
	}
	return &planpb.Operator{
		OpType:   planpb.FilterOperatorType,
		FilterOp: &planpb.FilterOperator{Expression: pb, Columns: cols},
	}, nil
}

func (f *Filter) copyFrom(src Node, copied copyMap) error {
	other := src.(*Filter)
	f.copyFromOperator(other)
	exprCopy, err := f.graph.copyNode(other.Expression(), copied)
	if err != nil {
		return err
	}
	f.exprID = exprCopy.ID()
	return f.graph.addEdgeByID(f.id, exprCopy.ID())
}
