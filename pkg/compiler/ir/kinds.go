package ir

import "fmt"

// NodeKind identifies the concrete variant of a Node. The set is closed:
// every kind is either an operator (a pipeline stage) or an expression (a
// value), and the factory, the clone protocol, and lowering all switch
// exhaustively over it.
type NodeKind int

const (
	KindInvalid NodeKind = iota // zero-value is an invalid kind

	// Operator kinds.
	KindMemorySource
	KindMemorySink
	KindMap
	KindDrop
	KindBlockingAgg
	KindGroupBy
	KindFilter
	KindLimit
	KindUnion
	KindJoin
	KindGRPCSink
	KindGRPCSource
	KindGRPCSourceGroup
	KindTabletSourceGroup
	KindUDTFSource
	KindMetadataResolver

	// Expression kinds.
	KindString
	KindUInt128
	KindFloat
	KindInt
	KindBool
	KindTime
	KindFunc
	KindList
	KindTuple
	KindColumn
	KindMetadata
	KindMetadataLiteral
)

var nodeKindStrings = map[NodeKind]string{
	KindInvalid: "Invalid",

	KindMemorySource:      "MemorySource",
	KindMemorySink:        "MemorySink",
	KindMap:               "Map",
	KindDrop:              "Drop",
	KindBlockingAgg:       "BlockingAgg",
	KindGroupBy:           "GroupBy",
	KindFilter:            "Filter",
	KindLimit:             "Limit",
	KindUnion:             "Union",
	KindJoin:              "Join",
	KindGRPCSink:          "GRPCSink",
	KindGRPCSource:        "GRPCSource",
	KindGRPCSourceGroup:   "GRPCSourceGroup",
	KindTabletSourceGroup: "TabletSourceGroup",
	KindUDTFSource:        "UDTFSource",
	KindMetadataResolver:  "MetadataResolver",

	KindString:          "String",
	KindUInt128:         "UInt128",
	KindFloat:           "Float",
	KindInt:             "Int",
	KindBool:            "Bool",
	KindTime:            "Time",
	KindFunc:            "Func",
	KindList:            "List",
	KindTuple:           "Tuple",
	KindColumn:          "Column",
	KindMetadata:        "Metadata",
	KindMetadataLiteral: "MetadataLiteral",
}

// String returns a human-readable name for the kind.
func (k NodeKind) String() string {
	if s, ok := nodeKindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// sourceKinds are operator kinds that originate data and therefore can
// never have parents.
var sourceKinds = map[NodeKind]bool{
	KindMemorySource:      true,
	KindGRPCSource:        true,
	KindGRPCSourceGroup:   true,
	KindTabletSourceGroup: true,
	KindUDTFSource:        true,
}

// blockingKinds are operator kinds that must consume all input before
// producing output.
var blockingKinds = map[NodeKind]bool{
	KindMemorySink:  true,
	KindBlockingAgg: true,
	KindUnion:       true,
	KindJoin:        true,
	KindGRPCSink:    true,
}
