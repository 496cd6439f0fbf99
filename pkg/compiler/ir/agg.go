package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// BlockingAgg groups its input rows by the group columns and evaluates
// one aggregate function per value column over each group.
type BlockingAgg struct {
	baseOperator

	groupIDs []int64
	aggVals  []colExprRef
}

var _ Operator = (*BlockingAgg)(nil)

// Init attaches the aggregate beneath parent. Every value expression must
// be a call to an aggregate function; arguments of those calls must be
// columns or constants.
func (a *BlockingAgg) Init(parent Operator, groups []*Column, values []ColumnExpression) error {
	if err := a.AddParent(parent); err != nil {
		return err
	}
	for _, g := range groups {
		if err := a.AddGroup(g); err != nil {
			return err
		}
	}
	for _, v := range values {
		if err := a.AddValue(v); err != nil {
			return err
		}
	}
	return nil
}

func (a *BlockingAgg) DebugString() string {
	return fmt.Sprintf("BlockingAgg(id=%d, groups=%d, values=%d)", a.id, len(a.groupIDs), len(a.aggVals))
}

// Groups returns the group-by columns in order.
func (a *BlockingAgg) Groups() []*Column {
	out := make([]*Column, len(a.groupIDs))
	for i, id := range a.groupIDs {
		col, ok := a.graph.Get(id).(*Column)
		if !ok {
			panic(fmt.Sprintf("ir: group %d of agg %d is missing or not a column", id, a.id))
		}
		out[i] = col
	}
	return out
}

// AddGroup appends a group-by column.
func (a *BlockingAgg) AddGroup(col *Column) error {
	a.groupIDs = append(a.groupIDs, col.ID())
	return a.graph.addEdgeByID(a.id, col.ID())
}

// Values returns the named aggregate expressions in order.
func (a *BlockingAgg) Values() []ColumnExpression {
	out := make([]ColumnExpression, len(a.aggVals))
	for i, ref := range a.aggVals {
		expr, ok := a.graph.Get(ref.exprID).(Expression)
		if !ok {
			panic(fmt.Sprintf("ir: value %d of agg %d is missing or not an expression", ref.exprID, a.id))
		}
		out[i] = ColumnExpression{Name: ref.name, Expr: expr}
	}
	return out
}

// AddValue appends one named aggregate expression.
func (a *BlockingAgg) AddValue(ce ColumnExpression) error {
	if _, ok := ce.Expr.(*Func); !ok {
		return NodeErrorf(a, "aggregate value %q must be a function call, got %s", ce.Name, ce.Expr.Kind())
	}
	a.aggVals = append(a.aggVals, colExprRef{name: ce.Name, exprID: ce.Expr.ID()})
	return a.graph.addEdgeByID(a.id, ce.Expr.ID())
}

func (a *BlockingAgg) ToProto() (*planpb.Operator, error) {
	op := &planpb.AggregateOperator{Windowed: false}

	for _, ce := range a.Values() {
		fn := ce.Expr.(*Func)
		aggExpr := &planpb.AggregateExpression{Name: fn.Name, ID: fn.FuncID()}
		for _, arg := range fn.Args() {
			pbArg, err := aggArgProto(a, arg)
			if err != nil {
				return nil, err
			}
			aggExpr.Args = append(aggExpr.Args, pbArg)
		}
		op.Values = append(op.Values, aggExpr)
		op.ValueNames = append(op.ValueNames, ce.Name)
	}

	for _, g := range a.Groups() {
		col, err := g.columnProto()
		if err != nil {
			return nil, err
		}
		op.Groups = append(op.Groups, col)
		op.GroupNames = append(op.GroupNames, g.ColName)
	}

	return &planpb.Operator{OpType: planpb.AggregateOperatorType, AggOp: op}, nil
}

// aggArgProto lowers one aggregate-function argument. The engine only
// accepts columns and constants here; nested calls must be hoisted into a
// Map by an earlier pass.
func aggArgProto(a *BlockingAgg, arg Expression) (*planpb.AggregateExpressionArg, error) {
	switch e := arg.(type) {
	case *Column:
		col, err := e.columnProto()
		if err != nil {
			return nil, err
		}
		return &planpb.AggregateExpressionArg{Column: col}, nil
	case Datum:
		v, err := e.ValueProto()
		if err != nil {
			return nil, err
		}
		return &planpb.AggregateExpressionArg{Value: v}, nil
	default:
		return nil, NodeErrorf(a, "aggregate arguments must be columns or constants, got %s", arg.Kind())
	}
}

func (a *BlockingAgg) copyFrom(src Node, copied copyMap) error {
	other := src.(*BlockingAgg)
	a.copyFromOperator(other)
	for _, g := range other.Groups() {
		gCopy, err := a.graph.copyNode(g, copied)
		if err != nil {
			return err
		}
		if err := a.AddGroup(gCopy.(*Column)); err != nil {
			return err
		}
	}
	for _, ce := range other.Values() {
		vCopy, err := a.graph.copyNode(ce.Expr, copied)
		if err != nil {
			return err
		}
		if err := a.AddValue(ColumnExpression{Name: ce.Name, Expr: vCopy.(Expression)}); err != nil {
			return err
		}
	}
	return nil
}

// GroupBy is a front-end scaffold that records group columns until the
// following aggregate consumes them. A rewrite pass folds it into the
// BlockingAgg, so it never lowers.
type GroupBy struct {
	baseOperator

	groupIDs []int64
}

var _ Operator = (*GroupBy)(nil)

// Init attaches the group-by beneath parent.
func (g *GroupBy) Init(parent Operator, groups []*Column) error {
	if err := g.AddParent(parent); err != nil {
		return err
	}
	for _, col := range groups {
		g.groupIDs = append(g.groupIDs, col.ID())
		if err := g.graph.addEdgeByID(g.id, col.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (g *GroupBy) DebugString() string {
	return fmt.Sprintf("GroupBy(id=%d, groups=%d)", g.id, len(g.groupIDs))
}

// Groups returns the group columns in order.
func (g *GroupBy) Groups() []*Column {
	out := make([]*Column, len(g.groupIDs))
	for i, id := range g.groupIDs {
		col, ok := g.graph.Get(id).(*Column)
		if !ok {
			panic(fmt.Sprintf("ir: group %d of groupby %d is missing or not a column", id, g.id))
		}
		out[i] = col
	}
	return out
}

func (g *GroupBy) ToProto() (*planpb.Operator, error) {
	return nil, unimplementedError(g, "group-bys must be folded into an aggregate before lowering")
}

func (g *GroupBy) copyFrom(src Node, copied copyMap) error {
	other := src.(*GroupBy)
	g.copyFromOperator(other)
	for _, col := range other.Groups() {
		cCopy, err := g.graph.copyNode(col, copied)
		if err != nil {
			return err
		}
		g.groupIDs = append(g.groupIDs, cCopy.ID())
		if err := g.graph.addEdgeByID(g.id, cCopy.ID()); err != nil {
			return err
		}
	}
	return nil
}
