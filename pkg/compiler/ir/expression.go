package ir

import (
	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

// Expression is a value-producing node: a literal, a column reference, a
// function call, or a collection. Expressions hang off the operator that
// owns them via graph edges, operator first.
type Expression interface {
	Node

	// DataType returns the expression's resolved type; meaningful only
	// once TypeResolved reports true.
	DataType() typespb.DataType
	// SetDataType records the resolved type.
	SetDataType(t typespb.DataType)
	// TypeResolved reports whether type analysis has run on this node.
	TypeResolved() bool

	// ToProto lowers the expression into a scalar-expression message.
	ToProto() (*planpb.ScalarExpression, error)
}

// Datum is an expression whose value is a compile-time constant.
type Datum interface {
	Expression

	// ValueProto lowers the constant into a scalar-value message.
	ValueProto() (*planpb.ScalarValue, error)
}

type baseExpression struct {
	baseNode

	dataType     typespb.DataType
	typeResolved bool
}

func (*baseExpression) IsOperator() bool   { return false }
func (*baseExpression) IsExpression() bool { return true }

func (e *baseExpression) DataType() typespb.DataType { return e.dataType }
func (e *baseExpression) TypeResolved() bool         { return e.typeResolved }

func (e *baseExpression) SetDataType(t typespb.DataType) {
	e.dataType = t
	e.typeResolved = true
}

func (e *baseExpression) copyFromExpression(src Expression) {
	e.copyFromBase(src)
	e.dataType = src.DataType()
	e.typeResolved = src.TypeResolved()
}

// datumToProto lowers a constant to the expression wire form: a
// ScalarExpression wrapping its ScalarValue.
func datumToProto(d Datum) (*planpb.ScalarExpression, error) {
	v, err := d.ValueProto()
	if err != nil {
		return nil, err
	}
	return &planpb.ScalarExpression{Value: v}, nil
}
