package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// ColumnExpression names one output column of a Map or one aggregate
// value of a BlockingAgg.
type ColumnExpression struct {
	Name string
	Expr Expression
}

// colExprRef is the stored form of a ColumnExpression: the expression is
// held by id and resolved through the graph on access.
type colExprRef struct {
	name   string
	exprID int64
}

// Map projects each input row through named expressions, producing one
// output column per expression.
type Map struct {
	baseOperator

	colExprs []colExprRef
	// KeepInputColumns asks the rewrite passes to prepend the parent's
	// columns to the output relation instead of replacing them.
	KeepInputColumns bool
}

var _ Operator = (*Map)(nil)

// Init attaches the map beneath parent with the given output columns.
func (m *Map) Init(parent Operator, colExprs []ColumnExpression, keepInputColumns bool) error {
	m.KeepInputColumns = keepInputColumns
	if err := m.AddParent(parent); err != nil {
		return err
	}
	return m.SetColumnExpressions(colExprs)
}

func (m *Map) DebugString() string {
	return fmt.Sprintf("Map(id=%d, columns=%d)", m.id, len(m.colExprs))
}

// ColumnExpressions returns the output columns in order.
func (m *Map) ColumnExpressions() []ColumnExpression {
	out := make([]ColumnExpression, len(m.colExprs))
	for i, ref := range m.colExprs {
		out[i] = ColumnExpression{Name: ref.name, Expr: m.expr(ref.exprID)}
	}
	return out
}

// SetColumnExpressions replaces the output columns, rewiring the
// ownership edges.
func (m *Map) SetColumnExpressions(colExprs []ColumnExpression) error {
	for _, ref := range m.colExprs {
		if err := m.graph.deleteEdgeByID(m.id, ref.exprID); err != nil {
			return err
		}
	}
	m.colExprs = m.colExprs[:0]
	for _, ce := range colExprs {
		if err := m.AddColumnExpression(ce); err != nil {
			return err
		}
	}
	return nil
}

// AddColumnExpression appends one output column.
func (m *Map) AddColumnExpression(ce ColumnExpression) error {
	m.colExprs = append(m.colExprs, colExprRef{name: ce.Name, exprID: ce.Expr.ID()})
	return m.graph.addEdgeByID(m.id, ce.Expr.ID())
}

// UpdateColumnExpression replaces the output column at idx, rewiring the
// ownership edge.
func (m *Map) UpdateColumnExpression(idx int, ce ColumnExpression) error {
	if idx < 0 || idx >= len(m.colExprs) {
		return NodeErrorf(m, "map has no column expression %d", idx)
	}
	old := m.colExprs[idx].exprID
	m.colExprs[idx] = colExprRef{name: ce.Name, exprID: ce.Expr.ID()}
	if err := m.graph.deleteEdgeByID(m.id, old); err != nil {
		return err
	}
	return m.graph.addEdgeByID(m.id, ce.Expr.ID())
}

func (m *Map) expr(id int64) Expression {
	expr, ok := m.graph.Get(id).(Expression)
	if !ok {
		panic(fmt.Sprintf("ir: expression %d of map %d is missing or not an expression", id, m.id))
	}
	return expr
}

func (m *Map) ToProto() (*planpb.Operator, error) {
	op := &planpb.MapOperator{
		Expressions: make([]*planpb.ScalarExpression, 0, len(m.colExprs)),
		ColumnNames: make([]string, 0, len(m.colExprs)),
	}
	for _, ce := range m.ColumnExpressions() {
		pb, err := ce.Expr.ToProto()
		if err != nil {
			return nil, err
		}
		op.Expressions = append(op.Expressions, pb)
		op.ColumnNames = append(op.ColumnNames, ce.Name)
	}
	return &planpb.Operator{OpType: planpb.MapOperatorType, MapOp: op}, nil
}

func (m *Map) copyFrom(src Node, copied copyMap) error {
	other := src.(*Map)
	m.copyFromOperator(other)
	m.KeepInputColumns = other.KeepInputColumns
	for _, ce := range other.ColumnExpressions() {
		exprCopy, err := m.graph.copyNode(ce.Expr, copied)
		if err != nil {
			return err
		}
		if err := m.AddColumnExpression(ColumnExpression{Name: ce.Name, Expr: exprCopy.(Expression)}); err != nil {
			return err
		}
	}
	return nil
}

// Drop removes named columns from its parent's relation. It is a
// front-end convenience: a rewrite pass turns it into a Map selecting the
// surviving columns, so it never lowers.
type Drop struct {
	baseOperator

	DroppedColumns []string
}

var _ Operator = (*Drop)(nil)

// Init attaches the drop beneath parent.
func (d *Drop) Init(parent Operator, columns []string) error {
	d.DroppedColumns = columns
	return d.AddParent(parent)
}

func (d *Drop) DebugString() string {
	return fmt.Sprintf("Drop(id=%d, columns=%v)", d.id, d.DroppedColumns)
}

func (d *Drop) ToProto() (*planpb.Operator, error) {
	return nil, unimplementedError(d, "drops must be rewritten to maps before lowering")
}

func (d *Drop) copyFrom(src Node, _ copyMap) error {
	other := src.(*Drop)
	d.copyFromOperator(other)
	d.DroppedColumns = append([]string(nil), other.DroppedColumns...)
	return nil
}
