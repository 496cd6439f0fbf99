package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// Limit truncates its input after N rows. The output relation is the
// parent's relation unchanged.
type Limit struct {
	baseOperator

	LimitValue int64
}

var _ Operator = (*Limit)(nil)

// Init attaches the limit beneath parent.
func (l *Limit) Init(parent Operator, limit int64) error {
	if limit < 0 {
		return NodeErrorf(l, "limit must be non-negative, got %d", limit)
	}
	l.LimitValue = limit
	return l.AddParent(parent)
}

func (l *Limit) DebugString() string {
	return fmt.Sprintf("Limit(id=%d, %d)", l.id, l.LimitValue)
}

func (l *Limit) ToProto() (*planpb.Operator, error) {
	cols, err := l.relationColumns()
	if err != nil {
		return nil, err
	}
	return &planpb.Operator{
		OpType:  planpb.LimitOperatorType,
		LimitOp: &planpb.LimitOperator{Limit: l.LimitValue, Columns: cols},
	}, nil
}

func (l *Limit) copyFrom(src Node, _ copyMap) error {
	other := src.(*Limit)
	l.copyFromOperator(other)
	l.LimitValue = other.LimitValue
	return nil
}
