package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

// String is a string literal.
type String struct {
	baseExpression

	Value string
}

var _ Datum = (*String)(nil)

// Init sets the literal value.
func (s *String) Init(value string) error {
	s.Value = value
	s.SetDataType(typespb.String)
	return nil
}

func (s *String) DebugString() string {
	return fmt.Sprintf("String(id=%d, %q)", s.id, s.Value)
}

func (s *String) ValueProto() (*planpb.ScalarValue, error) {
	return &planpb.ScalarValue{DataType: typespb.String, StringValue: s.Value}, nil
}

func (s *String) ToProto() (*planpb.ScalarExpression, error) { return datumToProto(s) }

func (s *String) copyFrom(src Node, _ copyMap) error {
	other := src.(*String)
	s.copyFromExpression(other)
	s.Value = other.Value
	return nil
}

// Int is a 64-bit signed integer literal.
type Int struct {
	baseExpression

	Value int64
}

var _ Datum = (*Int)(nil)

// Init sets the literal value.
func (i *Int) Init(value int64) error {
	i.Value = value
	i.SetDataType(typespb.Int64)
	return nil
}

func (i *Int) DebugString() string {
	return fmt.Sprintf("Int(id=%d, %d)", i.id, i.Value)
}

func (i *Int) ValueProto() (*planpb.ScalarValue, error) {
	return &planpb.ScalarValue{DataType: typespb.Int64, Int64Value: i.Value}, nil
}

func (i *Int) ToProto() (*planpb.ScalarExpression, error) { return datumToProto(i) }

func (i *Int) copyFrom(src Node, _ copyMap) error {
	other := src.(*Int)
	i.copyFromExpression(other)
	i.Value = other.Value
	return nil
}

// Float is a 64-bit floating point literal.
type Float struct {
	baseExpression

	Value float64
}

var _ Datum = (*Float)(nil)

// Init sets the literal value.
func (f *Float) Init(value float64) error {
	f.Value = value
	f.SetDataType(typespb.Float64)
	return nil
}

func (f *Float) DebugString() string {
	return fmt.Sprintf("Float(id=%d, %g)", f.id, f.Value)
}

func (f *Float) ValueProto() (*planpb.ScalarValue, error) {
	return &planpb.ScalarValue{DataType: typespb.Float64, Float64Value: f.Value}, nil
}

func (f *Float) ToProto() (*planpb.ScalarExpression, error) { return datumToProto(f) }

func (f *Float) copyFrom(src Node, _ copyMap) error {
	other := src.(*Float)
	f.copyFromExpression(other)
	f.Value = other.Value
	return nil
}

// Bool is a boolean literal.
type Bool struct {
	baseExpression

	Value bool
}

var _ Datum = (*Bool)(nil)

// Init sets the literal value.
func (b *Bool) Init(value bool) error {
	b.Value = value
	b.SetDataType(typespb.Boolean)
	return nil
}

func (b *Bool) DebugString() string {
	return fmt.Sprintf("Bool(id=%d, %t)", b.id, b.Value)
}

func (b *Bool) ValueProto() (*planpb.ScalarValue, error) {
	return &planpb.ScalarValue{DataType: typespb.Boolean, BoolValue: b.Value}, nil
}

func (b *Bool) ToProto() (*planpb.ScalarExpression, error) { return datumToProto(b) }

func (b *Bool) copyFrom(src Node, _ copyMap) error {
	other := src.(*Bool)
	b.copyFromExpression(other)
	b.Value = other.Value
	return nil
}

// Time is a nanosecond-precision timestamp literal.
type Time struct {
	baseExpression

	Value int64
}

var _ Datum = (*Time)(nil)

// Init sets the literal value, in nanoseconds since the epoch.
func (t *Time) Init(ns int64) error {
	t.Value = ns
	t.SetDataType(typespb.Time64NS)
	return nil
}

func (t *Time) DebugString() string {
	return fmt.Sprintf("Time(id=%d, %d)", t.id, t.Value)
}

func (t *Time) ValueProto() (*planpb.ScalarValue, error) {
	return &planpb.ScalarValue{DataType: typespb.Time64NS, Time64NSValue: t.Value}, nil
}

func (t *Time) ToProto() (*planpb.ScalarExpression, error) { return datumToProto(t) }

func (t *Time) copyFrom(src Node, _ copyMap) error {
	other := src.(*Time)
	t.copyFromExpression(other)
	t.Value = other.Value
	return nil
}

// UInt128 is a 128-bit unsigned integer literal, used for entity
// identifiers too wide for int64.
type UInt128 struct {
	baseExpression

	High uint64
	Low  uint64
}

var _ Datum = (*UInt128)(nil)

// Init sets the literal value from its two 64-bit halves.
func (u *UInt128) Init(high, low uint64) error {
	u.High = high
	u.Low = low
	u.SetDataType(typespb.UInt128)
	return nil
}

func (u *UInt128) DebugString() string {
	return fmt.Sprintf("UInt128(id=%d, high=%d, low=%d)", u.id, u.High, u.Low)
}

func (u *UInt128) ValueProto() (*planpb.ScalarValue, error) {
	return &planpb.ScalarValue{
		DataType:     typespb.UInt128,
		UInt128Value: &planpb.UInt128{High: u.High, Low: u.Low},
	}, nil
}

func (u *UInt128) ToProto() (*planpb.ScalarExpression, error) { return datumToProto(u) }

func (u *UInt128) copyFrom(src Node, _ copyMap) error {
	other := src.(*UInt128)
	u.copyFromExpression(other)
	u.High = other.High
	u.Low = other.Low
	return nil
}
