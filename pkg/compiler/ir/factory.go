package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/udfpb"
	"github.com/korvus-io/korvus/pkg/table/schema"
)

// NodeOption configures a node between registration and Init, so
// Init-time semantic errors already carry whatever it attaches.
type NodeOption func(Node)

// At attaches the source position of the syntax the node was created
// for.
func At(pos Position) NodeOption {
	return func(n Node) { n.SetPos(pos) }
}

func applyNodeOptions(n Node, opts []NodeOption) {
	for _, opt := range opts {
		opt(n)
	}
}

// newNodeOfKind allocates an empty, unattached node of the given kind.
// The clone protocol uses it to mint the destination before copying
// kind-specific state across.
func newNodeOfKind(kind NodeKind) Node {
	switch kind {
	case KindMemorySource:
		return &MemorySource{}
	case KindMemorySink:
		return &MemorySink{}
	case KindMap:
		return &Map{}
	case KindDrop:
		return &Drop{}
	case KindBlockingAgg:
		return &BlockingAgg{}
	case KindGroupBy:
		return &GroupBy{}
	case KindFilter:
		return &Filter{}
	case KindLimit:
		return &Limit{}
	case KindUnion:
		return &Union{}
	case KindJoin:
		return &Join{}
	case KindGRPCSink:
		return &GRPCSink{}
	case KindGRPCSource:
		return &GRPCSource{}
	case KindGRPCSourceGroup:
		return &GRPCSourceGroup{}
	case KindTabletSourceGroup:
		return &TabletSourceGroup{}
	case KindUDTFSource:
		return &UDTFSource{}
	case KindMetadataResolver:
		return &MetadataResolver{}
	case KindString:
		return &String{}
	case KindUInt128:
		return &UInt128{}
	case KindFloat:
		return &Float{}
	case KindInt:
		return &Int{}
	case KindBool:
		return &Bool{}
	case KindTime:
		return &Time{}
	case KindFunc:
		return &Func{}
	case KindList:
		return &List{}
	case KindTuple:
		return &Tuple{}
	case KindColumn:
		return &Column{}
	case KindMetadata:
		return &Metadata{}
	case KindMetadataLiteral:
		return &MetadataLiteral{}
	default:
		panic(fmt.Sprintf("ir: cannot allocate node of kind %s", kind))
	}
}

// CreateMemorySource adds a MemorySource reading tableName.
func (g *IR) CreateMemorySource(tableName string, selectedColumns []string, opts ...NodeOption) (*MemorySource, error) {
	n := &MemorySource{}
	g.register(n, KindMemorySource)
	applyNodeOptions(n, opts)
	return n, n.Init(tableName, selectedColumns)
}

// CreateMemorySink adds a MemorySink beneath parent.
func (g *IR) CreateMemorySink(parent Operator, name string, outColumns []string, opts ...NodeOption) (*MemorySink, error) {
	n := &MemorySink{}
	g.register(n, KindMemorySink)
	applyNodeOptions(n, opts)
	return n, n.Init(parent, name, outColumns)
}

// CreateMap adds a Map beneath parent.
func (g *IR) CreateMap(parent Operator, colExprs []ColumnExpression, keepInputColumns bool, opts ...NodeOption) (*Map, error) {
	n := &Map{}
	g.register(n, KindMap)
	applyNodeOptions(n, opts)
	return n, n.Init(parent, colExprs, keepInputColumns)
}

// CreateDrop adds a Drop beneath parent.
func (g *IR) CreateDrop(parent Operator, columns []string, opts ...NodeOption) (*Drop, error) {
	n := &Drop{}
	g.register(n, KindDrop)
	applyNodeOptions(n, opts)
	return n, n.Init(parent, columns)
}

// CreateBlockingAgg adds a BlockingAgg beneath parent.
func (g *IR) CreateBlockingAgg(parent Operator, groups []*Column, values []ColumnExpression, opts ...NodeOption) (*BlockingAgg, error) {
	n := &BlockingAgg{}
	g.register(n, KindBlockingAgg)
	applyNodeOptions(n, opts)
	return n, n.Init(parent, groups, values)
}

// CreateGroupBy adds a GroupBy beneath parent.
func (g *IR) CreateGroupBy(parent Operator, groups []*Column, opts ...NodeOption) (*GroupBy, error) {
	n := &GroupBy{}
	g.register(n, KindGroupBy)
	applyNodeOptions(n, opts)
	return n, n.Init(parent, groups)
}

// CreateFilter adds a Filter beneath parent.
func (g *IR) CreateFilter(parent Operator, predicate Expression, opts ...NodeOption) (*Filter, error) {
	n := &Filter{}
	g.register(n, KindFilter)
	applyNodeOptions(n, opts)
	return n, n.Init(parent, predicate)
}

// CreateLimit adds a Limit beneath parent.
func (g *IR) CreateLimit(parent Operator, limit int64, opts ...NodeOption) (*Limit, error) {
	n := &Limit{}
	g.register(n, KindLimit)
	applyNodeOptions(n, opts)
	return n, n.Init(parent, limit)
}

// CreateUnion adds a Union beneath parents.
func (g *IR) CreateUnion(parents []Operator, opts ...NodeOption) (*Union, error) {
	n := &Union{}
	g.register(n, KindUnion)
	applyNodeOptions(n, opts)
	return n, n.Init(parents)
}

// CreateJoin adds a Join beneath left and right.
func (g *IR) CreateJoin(left, right Operator, how string, leftOn, rightOn []*Column, suffixes []string, opts ...NodeOption) (*Join, error) {
	n := &Join{}
	g.register(n, KindJoin)
	applyNodeOptions(n, opts)
	return n, n.Init(left, right, how, leftOn, rightOn, suffixes)
}

// CreateGRPCSink adds a GRPCSink beneath parent.
func (g *IR) CreateGRPCSink(parent Operator, destinationID int64, opts ...NodeOption) (*GRPCSink, error) {
	n := &GRPCSink{}
	g.register(n, KindGRPCSink)
	applyNodeOptions(n, opts)
	return n, n.Init(parent, destinationID)
}

// CreateGRPCSource adds a GRPCSource with a known relation.
func (g *IR) CreateGRPCSource(sourceID int64, relation schema.Relation, opts ...NodeOption) (*GRPCSource, error) {
	n := &GRPCSource{}
	g.register(n, KindGRPCSource)
	applyNodeOptions(n, opts)
	return n, n.Init(sourceID, relation)
}

// CreateGRPCSourceGroup adds a GRPCSourceGroup with a known relation.
func (g *IR) CreateGRPCSourceGroup(sourceID int64, relation schema.Relation, opts ...NodeOption) (*GRPCSourceGroup, error) {
	n := &GRPCSourceGroup{}
	g.register(n, KindGRPCSourceGroup)
	applyNodeOptions(n, opts)
	return n, n.Init(sourceID, relation)
}

// CreateTabletSourceGroup wraps source with the tablets it spans.
func (g *IR) CreateTabletSourceGroup(source *MemorySource, tablets []string, tabletKey string, opts ...NodeOption) (*TabletSourceGroup, error) {
	n := &TabletSourceGroup{}
	g.register(n, KindTabletSourceGroup)
	applyNodeOptions(n, opts)
	return n, n.Init(source, tablets, tabletKey)
}

// CreateUDTFSource adds a UDTFSource bound to spec.
func (g *IR) CreateUDTFSource(spec udfpb.UDTFSourceSpec, args []Datum, opts ...NodeOption) (*UDTFSource, error) {
	n := &UDTFSource{}
	g.register(n, KindUDTFSource)
	applyNodeOptions(n, opts)
	return n, n.Init(spec, args)
}

// CreateMetadataResolver adds a MetadataResolver beneath parent.
func (g *IR) CreateMetadataResolver(parent Operator, opts ...NodeOption) (*MetadataResolver, error) {
	n := &MetadataResolver{}
	g.register(n, KindMetadataResolver)
	applyNodeOptions(n, opts)
	return n, n.Init(parent)
}

// CreateString adds a string literal.
func (g *IR) CreateString(value string, opts ...NodeOption) (*String, error) {
	n := &String{}
	g.register(n, KindString)
	applyNodeOptions(n, opts)
	return n, n.Init(value)
}

// CreateInt adds an integer literal.
func (g *IR) CreateInt(value int64, opts ...NodeOption) (*Int, error) {
	n := &Int{}
	g.register(n, KindInt)
	applyNodeOptions(n, opts)
	return n, n.Init(value)
}

// CreateFloat adds a float literal.
func (g *IR) CreateFloat(value float64, opts ...NodeOption) (*Float, error) {
	n := &Float{}
	g.register(n, KindFloat)
	applyNodeOptions(n, opts)
	return n, n.Init(value)
}

// CreateBool adds a boolean literal.
func (g *IR) CreateBool(value bool, opts ...NodeOption) (*Bool, error) {
	n := &Bool{}
	g.register(n, KindBool)
	applyNodeOptions(n, opts)
	return n, n.Init(value)
}

// CreateTime adds a timestamp literal from nanoseconds since the epoch.
func (g *IR) CreateTime(ns int64, opts ...NodeOption) (*Time, error) {
	n := &Time{}
	g.register(n, KindTime)
	applyNodeOptions(n, opts)
	return n, n.Init(ns)
}

// CreateUInt128 adds a 128-bit unsigned literal from its halves.
func (g *IR) CreateUInt128(high, low uint64, opts ...NodeOption) (*UInt128, error) {
	n := &UInt128{}
	g.register(n, KindUInt128)
	applyNodeOptions(n, opts)
	return n, n.Init(high, low)
}

// CreateFunc adds a call to the named registry function.
func (g *IR) CreateFunc(name string, args []Expression, opts ...NodeOption) (*Func, error) {
	n := &Func{}
	g.register(n, KindFunc)
	applyNodeOptions(n, opts)
	return n, n.Init(name, args)
}

// CreateOpFunc adds a call to a built-in operator from OpMap.
func (g *IR) CreateOpFunc(op Op, args []Expression, opts ...NodeOption) (*Func, error) {
	n := &Func{}
	g.register(n, KindFunc)
	applyNodeOptions(n, opts)
	return n, n.InitOp(op, args)
}

// CreateList adds a list literal.
func (g *IR) CreateList(children []Expression, opts ...NodeOption) (*List, error) {
	n := &List{}
	g.register(n, KindList)
	applyNodeOptions(n, opts)
	return n, n.Init(children)
}

// CreateTuple adds a tuple literal.
func (g *IR) CreateTuple(children []Expression, opts ...NodeOption) (*Tuple, error) {
	n := &Tuple{}
	g.register(n, KindTuple)
	applyNodeOptions(n, opts)
	return n, n.Init(children)
}

// CreateColumn adds a column reference against the given parent index of
// its future containing operator.
func (g *IR) CreateColumn(colName string, containerOpParentIdx int64, opts ...NodeOption) (*Column, error) {
	n := &Column{}
	g.register(n, KindColumn)
	applyNodeOptions(n, opts)
	return n, n.Init(colName, containerOpParentIdx)
}

// CreateMetadata adds a metadata attribute reference.
func (g *IR) CreateMetadata(attrName string, containerOpParentIdx int64, opts ...NodeOption) (*Metadata, error) {
	n := &Metadata{}
	g.register(n, KindMetadata)
	applyNodeOptions(n, opts)
	return n, n.Init(attrName, containerOpParentIdx)
}

// CreateMetadataLiteral wraps literal for format validation against a
// metadata property.
func (g *IR) CreateMetadataLiteral(literal Datum, opts ...NodeOption) (*MetadataLiteral, error) {
	n := &MetadataLiteral{}
	g.register(n, KindMetadataLiteral)
	applyNodeOptions(n, opts)
	return n, n.Init(literal)
}
