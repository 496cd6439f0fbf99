package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// MemorySink terminates a pipeline by writing results to a named
// in-memory table the client reads back.
type MemorySink struct {
	baseOperator

	SinkName string
	// OutColumns restricts the output to a column subset; empty means the
	// parent's full relation.
	OutColumns []string
}

var _ Operator = (*MemorySink)(nil)

// Init attaches the sink beneath parent and names its output table.
func (m *MemorySink) Init(parent Operator, name string, outColumns []string) error {
	m.SinkName = name
	m.OutColumns = outColumns
	return m.AddParent(parent)
}

func (m *MemorySink) DebugString() string {
	return fmt.Sprintf("MemorySink(id=%d, name=%q)", m.id, m.SinkName)
}

func (m *MemorySink) ToProto() (*planpb.Operator, error) {
	return &planpb.Operator{
		OpType: planpb.MemorySinkOperatorType,
		MemSinkOp: &planpb.MemorySinkOperator{
			Name:        m.SinkName,
			ColumnNames: m.relation.ColNames(),
			ColumnTypes: m.relation.ColTypes(),
		},
	}, nil
}

func (m *MemorySink) copyFrom(src Node, _ copyMap) error {
	other := src.(*MemorySink)
	m.copyFromOperator(other)
	m.SinkName = other.SinkName
	m.OutColumns = append([]string(nil), other.OutColumns...)
	return nil
}
