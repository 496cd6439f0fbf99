package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/table/schema"
)

// GRPCSink terminates a fragment by shipping row batches to the remote
// fragment holding the source group with the matching destination id. The
// pairing is by id only; the sink never holds a reference into another
// graph.
type GRPCSink struct {
	baseOperator

	DestinationID int64

	address    string
	addressSet bool
}

var _ Operator = (*GRPCSink)(nil)

// Init attaches the sink beneath parent with its destination id.
func (s *GRPCSink) Init(parent Operator, destinationID int64) error {
	s.DestinationID = destinationID
	return s.AddParent(parent)
}

func (s *GRPCSink) DebugString() string {
	return fmt.Sprintf("GRPCSink(id=%d, destination=%d)", s.id, s.DestinationID)
}

// SetDestinationAddress records the physical address of the receiving
// fragment, filled in once placement is known.
func (s *GRPCSink) SetDestinationAddress(addr string) {
	s.address = addr
	s.addressSet = true
}

// DestinationAddress returns the physical address; meaningful only if
// DestinationAddressSet.
func (s *GRPCSink) DestinationAddress() string { return s.address }

// DestinationAddressSet reports whether placement has assigned an
// address.
func (s *GRPCSink) DestinationAddressSet() bool { return s.addressSet }

func (s *GRPCSink) ToProto() (*planpb.Operator, error) {
	if !s.addressSet {
		return nil, NodeErrorf(s, "grpc sink %d has no destination address", s.id)
	}
	return &planpb.Operator{
		OpType: planpb.GRPCSinkOperatorType,
		GRPCSinkOp: &planpb.GRPCSinkOperator{
			Address:       s.address,
			DestinationID: s.DestinationID,
		},
	}, nil
}

func (s *GRPCSink) copyFrom(src Node, _ copyMap) error {
	other := src.(*GRPCSink)
	s.copyFromOperator(other)
	s.DestinationID = other.DestinationID
	s.address = other.address
	s.addressSet = other.addressSet
	return nil
}

// GRPCSource originates a fragment by receiving row batches from the
// remote sink(s) addressed at its source id.
type GRPCSource struct {
	baseOperator

	SourceID int64
}

var _ Operator = (*GRPCSource)(nil)

// Init sets the source id and the known relation of the incoming rows.
func (s *GRPCSource) Init(sourceID int64, relation schema.Relation) error {
	s.SourceID = sourceID
	s.SetRelation(relation)
	return nil
}

func (s *GRPCSource) DebugString() string {
	return fmt.Sprintf("GRPCSource(id=%d, source=%d)", s.id, s.SourceID)
}

func (s *GRPCSource) ToProto() (*planpb.Operator, error) {
	return &planpb.Operator{
		OpType: planpb.GRPCSourceOperatorType,
		GRPCSourceOp: &planpb.GRPCSourceOperator{
			SourceID:    s.SourceID,
			ColumnNames: s.relation.ColNames(),
			ColumnTypes: s.relation.ColTypes(),
		},
	}, nil
}

func (s *GRPCSource) copyFrom(src Node, _ copyMap) error {
	other := src.(*GRPCSource)
	s.copyFromOperator(other)
	s.SourceID = other.SourceID
	return nil
}

// GRPCSourceGroup stands in for the set of remote sinks that will feed
// one logical source during distributed planning. It tracks the dependent
// sinks by id; once placement splits the plan, the group lowers to a
// plain GRPC source.
type GRPCSourceGroup struct {
	baseOperator

	SourceID int64

	dependentSinkIDs []int64
}

var _ Operator = (*GRPCSourceGroup)(nil)

// Init sets the source id and the known relation of the incoming rows.
func (g *GRPCSourceGroup) Init(sourceID int64, relation schema.Relation) error {
	g.SourceID = sourceID
	g.SetRelation(relation)
	return nil
}

func (g *GRPCSourceGroup) DebugString() string {
	return fmt.Sprintf("GRPCSourceGroup(id=%d, source=%d, sinks=%d)", g.id, g.SourceID, len(g.dependentSinkIDs))
}

// AddGRPCSink pairs a sink with this group, stamping the group's source
// id onto the sink as its destination. The sink must carry the relation
// this group expects to receive.
func (g *GRPCSourceGroup) AddGRPCSink(sink *GRPCSink) error {
	if sink.RelationResolved() && !sink.Relation().Equal(g.relation) {
		return NodeErrorf(g, "sink %d relation %s does not match source group relation %s",
			sink.ID(), sink.Relation(), g.relation)
	}
	sink.DestinationID = g.SourceID
	g.dependentSinkIDs = append(g.dependentSinkIDs, sink.ID())
	return nil
}

// DependentSinkIDs returns the node ids of the paired sinks. The sinks
// may live in a different graph; resolve the ids there.
func (g *GRPCSourceGroup) DependentSinkIDs() []int64 {
	return append([]int64(nil), g.dependentSinkIDs...)
}

func (g *GRPCSourceGroup) ToProto() (*planpb.Operator, error) {
	return &planpb.Operator{
		OpType: planpb.GRPCSourceOperatorType,
		GRPCSourceOp: &planpb.GRPCSourceOperator{
			SourceID:    g.SourceID,
			ColumnNames: g.relation.ColNames(),
			ColumnTypes: g.relation.ColTypes(),
		},
	}, nil
}

func (g *GRPCSourceGroup) copyFrom(src Node, _ copyMap) error {
	other := src.(*GRPCSourceGroup)
	g.copyFromOperator(other)
	g.SourceID = other.SourceID
	g.dependentSinkIDs = append([]int64(nil), other.dependentSinkIDs...)
	return nil
}
