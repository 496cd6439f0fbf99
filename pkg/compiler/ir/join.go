package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// Join combines its two parents on column equality. Right joins are
// expressed by the front-end swapping the parents and setting
// SpecifiedAsRight; on the wire only inner, left, and full outer exist.
type Join struct {
	baseOperator

	JoinKind planpb.JoinType
	// SpecifiedAsRight records that the query wrote how="right" and the
	// parents were swapped, so output suffixes keep the user's order.
	SpecifiedAsRight bool
	// Suffixes disambiguate colliding column names, one per parent.
	Suffixes []string

	leftOnIDs  []int64
	rightOnIDs []int64

	outputColumnNames []string
	outputColumnIDs   []int64
}

var _ Operator = (*Join)(nil)

// Init attaches the join beneath its two parents with the given equality
// key columns. leftOn and rightOn pair up positionally.
func (j *Join) Init(left, right Operator, how string, leftOn, rightOn []*Column, suffixes []string) error {
	if len(leftOn) != len(rightOn) {
		return NodeErrorf(j, "join has %d left keys and %d right keys", len(leftOn), len(rightOn))
	}
	kind, asRight, err := joinTypeFromString(how)
	if err != nil {
		return NodeErrorf(j, "%v", err)
	}
	j.JoinKind = kind
	j.SpecifiedAsRight = asRight
	j.Suffixes = suffixes

	if err := j.AddParent(left); err != nil {
		return err
	}
	if err := j.AddParent(right); err != nil {
		return err
	}
	for _, col := range leftOn {
		j.leftOnIDs = append(j.leftOnIDs, col.ID())
		if err := j.graph.addEdgeByID(j.id, col.ID()); err != nil {
			return err
		}
	}
	for _, col := range rightOn {
		j.rightOnIDs = append(j.rightOnIDs, col.ID())
		if err := j.graph.addEdgeByID(j.id, col.ID()); err != nil {
			return err
		}
	}
	return nil
}

// joinTypeFromString maps the query-language join name to the wire enum.
// "right" reports asRight: the caller is expected to have swapped the
// parents already.
func joinTypeFromString(how string) (kind planpb.JoinType, asRight bool, err error) {
	switch how {
	case "inner":
		return planpb.JoinTypeInner, false, nil
	case "left":
		return planpb.JoinTypeLeftOuter, false, nil
	case "right":
		return planpb.JoinTypeLeftOuter, true, nil
	case "outer", "full_outer":
		return planpb.JoinTypeFullOuter, false, nil
	default:
		return 0, false, fmt.Errorf("unknown join type %q, expected inner, left, right, or outer", how)
	}
}

func (j *Join) DebugString() string {
	return fmt.Sprintf("Join(id=%d, %s)", j.id, j.JoinKind)
}

// LeftOnColumns returns the left-parent key columns in order.
func (j *Join) LeftOnColumns() []*Column { return j.columns(j.leftOnIDs) }

// RightOnColumns returns the right-parent key columns in order.
func (j *Join) RightOnColumns() []*Column { return j.columns(j.rightOnIDs) }

func (j *Join) columns(ids []int64) []*Column {
	out := make([]*Column, len(ids))
	for i, id := range ids {
		col, ok := j.graph.Get(id).(*Column)
		if !ok {
			panic(fmt.Sprintf("ir: key column %d of join %d is missing or not a column", id, j.id))
		}
		out[i] = col
	}
	return out
}

// SetOutputColumns records the join's output relation: one name per
// selected column. Names and columns pair up positionally.
func (j *Join) SetOutputColumns(names []string, cols []*Column) error {
	if len(names) != len(cols) {
		return NodeErrorf(j, "join has %d output names for %d output columns", len(names), len(cols))
	}
	for _, id := range j.outputColumnIDs {
		if err := j.graph.deleteEdgeByID(j.id, id); err != nil {
			return err
		}
	}
	j.outputColumnNames = append([]string(nil), names...)
	j.outputColumnIDs = j.outputColumnIDs[:0]
	for _, col := range cols {
		j.outputColumnIDs = append(j.outputColumnIDs, col.ID())
		if err := j.graph.addEdgeByID(j.id, col.ID()); err != nil {
			return err
		}
	}
	return nil
}

// OutputColumns returns the selected output columns in order.
func (j *Join) OutputColumns() []*Column { return j.columns(j.outputColumnIDs) }

// OutputColumnNames returns the output relation's column names.
func (j *Join) OutputColumnNames() []string { return j.outputColumnNames }

func (j *Join) ToProto() (*planpb.Operator, error) {
	left := j.LeftOnColumns()
	right := j.RightOnColumns()
	op := &planpb.JoinOperator{
		Type:        j.JoinKind,
		ColumnNames: append([]string(nil), j.outputColumnNames...),
	}
	for i := range left {
		if !left[i].IndexResolved() || !right[i].IndexResolved() {
			return nil, NodeErrorf(j, "join key %d has unresolved columns", i)
		}
		op.EqualityConditions = append(op.EqualityConditions, &planpb.JoinEqualityCondition{
			LeftColumnIndex:  left[i].ColIdx(),
			RightColumnIndex: right[i].ColIdx(),
		})
	}
	for _, col := range j.OutputColumns() {
		if !col.IndexResolved() {
			return nil, NodeErrorf(j, "join output column %q is unresolved", col.ColName)
		}
		op.OutputColumns = append(op.OutputColumns, &planpb.JoinOutputColumn{
			ParentIndex: col.ContainerOpParentIdx,
			ColumnIndex: col.ColIdx(),
		})
	}
	return &planpb.Operator{OpType: planpb.JoinOperatorType, JoinOp: op}, nil
}

func (j *Join) copyFrom(src Node, copied copyMap) error {
	other := src.(*Join)
	j.copyFromOperator(other)
	j.JoinKind = other.JoinKind
	j.SpecifiedAsRight = other.SpecifiedAsRight
	j.Suffixes = append([]string(nil), other.Suffixes...)
	j.outputColumnNames = append([]string(nil), other.outputColumnNames...)

	copyCols := func(src []int64, dst *[]int64) error {
		for _, id := range src {
			col := other.graph.Get(id)
			cCopy, err := j.graph.copyNode(col, copied)
			if err != nil {
				return err
			}
			*dst = append(*dst, cCopy.ID())
			if err := j.graph.addEdgeByID(j.id, cCopy.ID()); err != nil {
				return err
			}
		}
		return nil
	}
	if err := copyCols(other.leftOnIDs, &j.leftOnIDs); err != nil {
		return err
	}
	if err := copyCols(other.rightOnIDs, &j.rightOnIDs); err != nil {
		return err
	}
	return copyCols(other.outputColumnIDs, &j.outputColumnIDs)
}
