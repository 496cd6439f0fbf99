// Package udfpb mirrors the engine's registry messages for user-defined
// table functions (UDTFs). The compiler consumes these specs to validate
// and bind UDTF source arguments.
package udfpb

import "github.com/korvus-io/korvus/pkg/plan/typespb"

// UDTFArg describes one named, typed argument of a UDTF.
type UDTFArg struct {
	Name    string
	ArgType typespb.DataType
}

// RelationColumn describes one output column of a UDTF.
type RelationColumn struct {
	Name string
	Type typespb.DataType
}

// UDTFSourceSpec is the registry entry for a table-valued function: its
// argument list (positional, in declaration order) and output relation.
type UDTFSourceSpec struct {
	Name     string
	Args     []UDTFArg
	Relation []RelationColumn
}
