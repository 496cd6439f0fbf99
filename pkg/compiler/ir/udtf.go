package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/plan/udfpb"
	"github.com/korvus-io/korvus/pkg/table/schema"
)

// UDTFSource originates rows by evaluating a registered table-valued
// function with constant arguments. The argument list follows the spec's
// declaration order once bound.
type UDTFSource struct {
	baseOperator

	FuncName string
	Spec     udfpb.UDTFSourceSpec

	argIDs []int64
}

var _ Operator = (*UDTFSource)(nil)

// Init binds the call to its registry spec. Arguments must be constants,
// positionally matched and type-checked against the spec, and the output
// relation comes from the spec.
func (u *UDTFSource) Init(spec udfpb.UDTFSourceSpec, args []Datum) error {
	u.FuncName = spec.Name
	u.Spec = spec
	if len(args) != len(spec.Args) {
		return NodeErrorf(u, "%s expects %d arguments, got %d", spec.Name, len(spec.Args), len(args))
	}
	for i, arg := range args {
		want := spec.Args[i]
		if arg.TypeResolved() && arg.DataType() != want.ArgType {
			return NodeErrorf(u, "%s argument %q expects %s, got %s",
				spec.Name, want.Name, want.ArgType, arg.DataType())
		}
		u.argIDs = append(u.argIDs, arg.ID())
		if err := u.graph.addEdgeByID(u.id, arg.ID()); err != nil {
			return err
		}
	}

	var rel schema.Relation
	for _, col := range spec.Relation {
		if err := rel.AddColumn(col.Name, col.Type); err != nil {
			return NodeErrorf(u, "%s has an invalid output relation: %v", spec.Name, err)
		}
	}
	u.SetRelation(rel)
	return nil
}

func (u *UDTFSource) DebugString() string {
	return fmt.Sprintf("UDTFSource(id=%d, %q)", u.id, u.FuncName)
}

// ArgValues returns the bound constant arguments in declaration order.
func (u *UDTFSource) ArgValues() []Datum {
	out := make([]Datum, len(u.argIDs))
	for i, id := range u.argIDs {
		d, ok := u.graph.Get(id).(Datum)
		if !ok {
			panic(fmt.Sprintf("ir: argument %d of udtf %d is missing or not a datum", id, u.id))
		}
		out[i] = d
	}
	return out
}

func (u *UDTFSource) ToProto() (*planpb.Operator, error) {
	op := &planpb.UDTFSourceOperator{
		Name:        u.FuncName,
		ColumnNames: u.relation.ColNames(),
		ColumnTypes: u.relation.ColTypes(),
	}
	for _, arg := range u.ArgValues() {
		v, err := arg.ValueProto()
		if err != nil {
			return nil, err
		}
		op.ArgValues = append(op.ArgValues, v)
	}
	return &planpb.Operator{OpType: planpb.UDTFSourceOperatorType, UDTFSourceOp: op}, nil
}

func (u *UDTFSource) copyFrom(src Node, copied copyMap) error {
	other := src.(*UDTFSource)
	u.copyFromOperator(other)
	u.FuncName = other.FuncName
	u.Spec = other.Spec
	for _, arg := range other.ArgValues() {
		argCopy, err := u.graph.copyNode(arg, copied)
		if err != nil {
			return err
		}
		u.argIDs = append(u.argIDs, argCopy.ID())
		if err := u.graph.addEdgeByID(u.id, argCopy.ID()); err != nil {
			return err
		}
	}
	return nil
}
