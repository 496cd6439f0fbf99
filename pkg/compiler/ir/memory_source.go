package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// MemorySource reads rows from a named in-memory table, optionally
// restricted to a column subset, a time window, and a single tablet.
type MemorySource struct {
	baseOperator

	TableName string
	// SelectedColumns is the column subset the query asked for; empty
	// means the full table relation.
	SelectedColumns []string

	startExprID  int64
	stopExprID   int64
	timeExprsSet bool
	timeStart    int64
	timeStop     int64
	timeSet      bool
	columnIdxs   []int64
	columnIdxSet bool
	tablet       string
	tabletSet    bool
	streaming    bool
}

var _ Operator = (*MemorySource)(nil)

// Init sets the table to read and the requested column subset.
func (m *MemorySource) Init(tableName string, selectedColumns []string) error {
	m.TableName = tableName
	m.SelectedColumns = selectedColumns
	return nil
}

func (m *MemorySource) DebugString() string {
	return fmt.Sprintf("MemorySource(id=%d, table=%q)", m.id, m.TableName)
}

// SetTimeExpressions records the unresolved start and stop expressions
// from the query. An evaluation pass folds them into the ns window via
// SetTimeValues.
func (m *MemorySource) SetTimeExpressions(start, stop Expression) error {
	m.startExprID = start.ID()
	m.stopExprID = stop.ID()
	m.timeExprsSet = true
	if err := m.graph.addEdgeByID(m.id, start.ID()); err != nil {
		return err
	}
	return m.graph.addEdgeByID(m.id, stop.ID())
}

// TimeExpressionsSet reports whether unresolved time expressions exist.
func (m *MemorySource) TimeExpressionsSet() bool { return m.timeExprsSet }

// TimeExpressions returns the start and stop expressions; meaningful
// only if TimeExpressionsSet.
func (m *MemorySource) TimeExpressions() (start, stop Expression) {
	s, ok := m.graph.Get(m.startExprID).(Expression)
	if !ok {
		panic(fmt.Sprintf("ir: start expression %d of memory source %d is missing", m.startExprID, m.id))
	}
	e, ok := m.graph.Get(m.stopExprID).(Expression)
	if !ok {
		panic(fmt.Sprintf("ir: stop expression %d of memory source %d is missing", m.stopExprID, m.id))
	}
	return s, e
}

// SetTimeValues restricts the scan to [start, stop) nanoseconds.
func (m *MemorySource) SetTimeValues(start, stop int64) {
	m.timeStart = start
	m.timeStop = stop
	m.timeSet = true
}

// IsTimeSet reports whether a time window was applied.
func (m *MemorySource) IsTimeSet() bool { return m.timeSet }

// TimeStart returns the window start; meaningful only if IsTimeSet.
func (m *MemorySource) TimeStart() int64 { return m.timeStart }

// TimeStop returns the window stop; meaningful only if IsTimeSet.
func (m *MemorySource) TimeStop() int64 { return m.timeStop }

// SetColumnIndexMap records the physical table indexes of the selected
// columns, in relation order.
func (m *MemorySource) SetColumnIndexMap(idxs []int64) {
	m.columnIdxs = append([]int64(nil), idxs...)
	m.columnIdxSet = true
}

// ColumnIndexMapSet reports whether the index map has been resolved.
func (m *MemorySource) ColumnIndexMapSet() bool { return m.columnIdxSet }

// SetTabletValue pins the scan to a single tablet.
func (m *MemorySource) SetTabletValue(tablet string) {
	m.tablet = tablet
	m.tabletSet = true
}

// HasTablet reports whether the scan is pinned to a tablet.
func (m *MemorySource) HasTablet() bool { return m.tabletSet }

// Tablet returns the pinned tablet; meaningful only if HasTablet.
func (m *MemorySource) Tablet() string { return m.tablet }

// SetStreaming marks the scan as an unbounded tail of the table.
func (m *MemorySource) SetStreaming(streaming bool) { m.streaming = streaming }

// Streaming reports whether the scan tails the table.
func (m *MemorySource) Streaming() bool { return m.streaming }

func (m *MemorySource) ToProto() (*planpb.Operator, error) {
	if !m.columnIdxSet {
		return nil, NodeErrorf(m, "memory source %q has no resolved column index map", m.TableName)
	}
	op := &planpb.MemorySourceOperator{
		Name:        m.TableName,
		ColumnIdxs:  m.columnIdxs,
		ColumnNames: m.relation.ColNames(),
		ColumnTypes: m.relation.ColTypes(),
	}
	if m.timeSet {
		op.StartTime = &planpb.Timestamp{Value: m.timeStart}
		op.StopTime = &planpb.Timestamp{Value: m.timeStop}
	}
	if m.tabletSet {
		op.Tablet = m.tablet
	}
	return &planpb.Operator{
		OpType:      planpb.MemorySourceOperatorType,
		MemSourceOp: op,
	}, nil
}

func (m *MemorySource) copyFrom(src Node, copied copyMap) error {
	other := src.(*MemorySource)
	m.copyFromOperator(other)
	m.TableName = other.TableName
	m.SelectedColumns = append([]string(nil), other.SelectedColumns...)
	if other.timeExprsSet {
		start, stop := other.TimeExpressions()
		startCopy, err := m.graph.copyNode(start, copied)
		if err != nil {
			return err
		}
		stopCopy, err := m.graph.copyNode(stop, copied)
		if err != nil {
			return err
		}
		if err := m.SetTimeExpressions(startCopy.(Expression), stopCopy.(Expression)); err != nil {
			return err
		}
	}
	m.timeStart = other.timeStart
	m.timeStop = other.timeStop
	m.timeSet = other.timeSet
	m.columnIdxs = append([]int64(nil), other.columnIdxs...)
	m.columnIdxSet = other.columnIdxSet
	m.tablet = other.tablet
	m.tabletSet = other.tabletSet
	m.streaming = other.streaming
	return nil
}
