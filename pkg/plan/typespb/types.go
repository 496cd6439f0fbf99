// Package typespb holds the data-type enumeration shared between the
// compiler IR, the table schema layer, and the physical-plan wire format.
// The values mirror the execution engine's type enum and must not be
// reordered.
package typespb

import "fmt"

// DataType is the type of a column or scalar value.
type DataType int32

const (
	DataTypeUnknown DataType = iota // zero-value is an unresolved type

	Boolean
	Int64
	UInt128
	Float64
	String
	Time64NS
)

var dataTypeStrings = map[DataType]string{
	DataTypeUnknown: "DATA_TYPE_UNKNOWN",

	Boolean:  "BOOLEAN",
	Int64:    "INT64",
	UInt128:  "UINT128",
	Float64:  "FLOAT64",
	String:   "STRING",
	Time64NS: "TIME64NS",
}

// String returns the wire name of the data type.
func (t DataType) String() string {
	if s, ok := dataTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("DataType(%d)", t)
}
