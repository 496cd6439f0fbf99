// Package planpb contains the physical-plan messages consumed by the
// distributed execution engine. It is a hand-maintained mirror of the
// engine's plan protobuf schema: field shapes, enum values, and nesting
// must match what the engine expects, so treat everything here as a
// stable wire contract.
package planpb

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

// Plan is the root of the lowered physical plan. Fragments partition the
// plan across execution nodes; the plan-level DAG orders the fragments.
type Plan struct {
	QueryID   string
	DAG       *DAG
	Fragments []*PlanFragment
}

// PlanFragment is the subset of operators destined for a single
// execution node.
type PlanFragment struct {
	ID    int64
	DAG   *DAG
	Nodes []*PlanNode
}

// PlanNode pairs an operator message with its plan-wide node id.
type PlanNode struct {
	ID int64
	Op *Operator
}

// DAG is the wire encoding of the dependency structure between plan
// nodes (or, at the plan level, between fragments).
type DAG struct {
	Nodes []*DAGNode
}

// DAGNode lists a node's neighbors. Both lists are sorted ascending so
// the encoding of a given graph is canonical.
type DAGNode struct {
	ID             int64
	SortedChildren []int64
	SortedParents  []int64
}

// OperatorType discriminates the concrete operator message carried by an
// Operator. Values mirror the engine's enum and must not be reordered.
type OperatorType int32

const (
	OperatorTypeUnknown OperatorType = iota

	MemorySourceOperatorType
	MemorySinkOperatorType
	MapOperatorType
	AggregateOperatorType
	FilterOperatorType
	LimitOperatorType
	UnionOperatorType
	JoinOperatorType
	GRPCSourceOperatorType
	GRPCSinkOperatorType
	UDTFSourceOperatorType
)

var operatorTypeStrings = map[OperatorType]string{
	OperatorTypeUnknown: "UNKNOWN_OPERATOR",

	MemorySourceOperatorType: "MEMORY_SOURCE_OPERATOR",
	MemorySinkOperatorType:   "MEMORY_SINK_OPERATOR",
	MapOperatorType:          "MAP_OPERATOR",
	AggregateOperatorType:    "AGGREGATE_OPERATOR",
	FilterOperatorType:       "FILTER_OPERATOR",
	LimitOperatorType:        "LIMIT_OPERATOR",
	UnionOperatorType:        "UNION_OPERATOR",
	JoinOperatorType:         "JOIN_OPERATOR",
	GRPCSourceOperatorType:   "GRPC_SOURCE_OPERATOR",
	GRPCSinkOperatorType:     "GRPC_SINK_OPERATOR",
	UDTFSourceOperatorType:   "UDTF_SOURCE_OPERATOR",
}

// String returns the wire name of the operator type.
func (t OperatorType) String() string {
	if s, ok := operatorTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("OperatorType(%d)", t)
}

// Operator carries exactly one concrete operator message, discriminated
// by OpType.
type Operator struct {
	OpType OperatorType

	MemSourceOp  *MemorySourceOperator
	MemSinkOp    *MemorySinkOperator
	MapOp        *MapOperator
	AggOp        *AggregateOperator
	FilterOp     *FilterOperator
	LimitOp      *LimitOperator
	UnionOp      *UnionOperator
	JoinOp       *JoinOperator
	GRPCSourceOp *GRPCSourceOperator
	GRPCSinkOp   *GRPCSinkOperator
	UDTFSourceOp *UDTFSourceOperator
}

// Timestamp wraps a nanosecond timestamp value.
type Timestamp struct {
	Value int64
}

// MemorySourceOperator reads from an in-memory table, optionally
// restricted to a time window and a single tablet.
type MemorySourceOperator struct {
	Name        string
	ColumnIdxs  []int64
	ColumnNames []string
	ColumnTypes []typespb.DataType
	StartTime   *Timestamp
	StopTime    *Timestamp
	Tablet      string
}

// MemorySinkOperator writes results to a named in-memory table.
type MemorySinkOperator struct {
	Name        string
	ColumnNames []string
	ColumnTypes []typespb.DataType
}

// MapOperator projects each input row through the given expressions.
type MapOperator struct {
	Expressions []*ScalarExpression
	ColumnNames []string
}

// AggregateOperator groups rows and evaluates aggregate expressions per
// group. Windowed is reserved for streaming aggregates and is always
// false in lowered plans today.
type AggregateOperator struct {
	Values     []*AggregateExpression
	Groups     []*Column
	GroupNames []string
	ValueNames []string
	Windowed   bool
}

// AggregateExpression names an aggregate function and its arguments.
type AggregateExpression struct {
	Name string
	ID   int64
	Args []*AggregateExpressionArg
}

// AggregateExpressionArg is either a constant or a column; aggregate
// arguments never nest.
type AggregateExpressionArg struct {
	Value  *ScalarValue
	Column *Column
}

// FilterOperator keeps rows for which Expression evaluates true. Columns
// lists the pass-through columns of the parent.
type FilterOperator struct {
	Expression *ScalarExpression
	Columns    []*Column
}

// LimitOperator truncates the stream after Limit rows.
type LimitOperator struct {
	Limit   int64
	Columns []*Column
}

// UnionOperator concatenates its parents' rows. ColumnMappings has one
// entry per parent; entry i maps this operator's output column positions
// to parent i's column positions.
type UnionOperator struct {
	ColumnNames    []string
	ColumnMappings []*UnionColumnMapping
}

// UnionColumnMapping is a single parent's column index mapping.
type UnionColumnMapping struct {
	ColumnIndexes []int64
}

// JoinType is the engine's join orientation. Right joins are normalized
// to left joins before lowering, so no right value exists on the wire.
type JoinType int32

const (
	JoinTypeInner JoinType = iota
	JoinTypeLeftOuter
	JoinTypeFullOuter
)

var joinTypeStrings = map[JoinType]string{
	JoinTypeInner:     "INNER",
	JoinTypeLeftOuter: "LEFT_OUTER",
	JoinTypeFullOuter: "FULL_OUTER",
}

// String returns the wire name of the join type.
func (t JoinType) String() string {
	if s, ok := joinTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("JoinType(%d)", t)
}

// JoinEqualityCondition pairs one left-parent key column with one
// right-parent key column.
type JoinEqualityCondition struct {
	LeftColumnIndex  int64
	RightColumnIndex int64
}

// JoinOutputColumn selects a column from one of the join's parents for
// the output relation.
type JoinOutputColumn struct {
	ParentIndex int64
	ColumnIndex int64
}

// JoinOperator joins its two parents on the given equality conditions.
type JoinOperator struct {
	Type               JoinType
	EqualityConditions []*JoinEqualityCondition
	OutputColumns      []*JoinOutputColumn
	ColumnNames        []string
}

// GRPCSourceOperator receives row batches over the network from the
// GRPCSinkOperator(s) paired with its source id.
type GRPCSourceOperator struct {
	SourceID    int64
	ColumnNames []string
	ColumnTypes []typespb.DataType
}

// GRPCSinkOperator sends row batches to the remote GRPCSourceOperator
// group identified by DestinationID.
type GRPCSinkOperator struct {
	Address       string
	DestinationID int64
}

// UDTFSourceOperator evaluates a user-defined table function with bound
// constant arguments.
type UDTFSourceOperator struct {
	Name        string
	ArgValues   []*ScalarValue
	ColumnNames []string
	ColumnTypes []typespb.DataType
}

// ScalarExpression carries exactly one of a constant, a function call,
// or a column reference.
type ScalarExpression struct {
	Value  *ScalarValue
	Func   *ScalarFunc
	Column *Column
}

// UInt128 is a 128-bit unsigned integer split into two 64-bit halves.
type UInt128 struct {
	High uint64
	Low  uint64
}

// ScalarValue is a typed constant. Only the field matching DataType is
// meaningful.
type ScalarValue struct {
	DataType typespb.DataType

	BoolValue     bool
	Int64Value    int64
	Float64Value  float64
	StringValue   string
	Time64NSValue int64
	UInt128Value  *UInt128
}

// ScalarFunc calls a registered scalar function over the given
// arguments. ArgsDataTypes carries the resolved type of each argument.
type ScalarFunc struct {
	Name          string
	ID            int64
	Args          []*ScalarExpression
	ArgsDataTypes []typespb.DataType
}

// Column references the output of another plan node: Node is the plan
// node id of the producing operator, Index the column position within
// its relation.
type Column struct {
	Node  int64
	Index int64
}
