package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// Union concatenates the rows of two or more parents that share a
// relation, up to column order. Column mappings, one per parent, record
// where each output column lives in that parent's relation; a resolution
// pass fills them in before lowering.
type Union struct {
	baseOperator

	columnMappings [][]int64
}

var _ Operator = (*Union)(nil)

// Init attaches the union beneath its parents, in order.
func (u *Union) Init(parents []Operator) error {
	if len(parents) < 2 {
		return NodeErrorf(u, "union requires at least two parents, got %d", len(parents))
	}
	for _, p := range parents {
		if err := u.AddParent(p); err != nil {
			return err
		}
	}
	return nil
}

func (u *Union) DebugString() string {
	return fmt.Sprintf("Union(id=%d, parents=%d)", u.id, len(u.parentIDs))
}

// SetRelationFromParents adopts the first parent's relation as the
// union's output. All parents must expose equal relations; matching
// column order across differently-ordered parents is the resolution
// pass's job, via the column mappings.
func (u *Union) SetRelationFromParents() error {
	parents := u.Parents()
	first := parents[0]
	if !first.RelationResolved() {
		return NodeErrorf(u, "union parent %d has no resolved relation", first.ID())
	}
	for _, p := range parents[1:] {
		if !p.RelationResolved() {
			return NodeErrorf(u, "union parent %d has no resolved relation", p.ID())
		}
		if !p.Relation().Equal(first.Relation()) {
			return NodeErrorf(u, "union parents disagree on relations: %s vs %s",
				first.Relation(), p.Relation())
		}
	}
	u.SetRelation(first.Relation())
	return nil
}

// AddColumnMapping appends one parent's mapping: entry i is the position
// of output column i in that parent's relation.
func (u *Union) AddColumnMapping(mapping []int64) {
	u.columnMappings = append(u.columnMappings, append([]int64(nil), mapping...))
}

// SetColumnMappings replaces all mappings at once, in parent order.
func (u *Union) SetColumnMappings(mappings [][]int64) error {
	if len(mappings) != len(u.parentIDs) {
		return NodeErrorf(u, "expected %d column mappings, got %d", len(u.parentIDs), len(mappings))
	}
	u.columnMappings = u.columnMappings[:0]
	for _, m := range mappings {
		u.AddColumnMapping(m)
	}
	return nil
}

// ColumnMappings returns the mappings resolved so far.
func (u *Union) ColumnMappings() [][]int64 { return u.columnMappings }

// HasColumnMappings reports whether every parent has a mapping.
func (u *Union) HasColumnMappings() bool {
	return len(u.columnMappings) == len(u.parentIDs) && len(u.parentIDs) > 0
}

func (u *Union) ToProto() (*planpb.Operator, error) {
	if !u.HasColumnMappings() {
		return nil, NodeErrorf(u, "union has %d column mappings for %d parents",
			len(u.columnMappings), len(u.parentIDs))
	}
	op := &planpb.UnionOperator{ColumnNames: u.relation.ColNames()}
	for _, m := range u.columnMappings {
		op.ColumnMappings = append(op.ColumnMappings,
			&planpb.UnionColumnMapping{ColumnIndexes: append([]int64(nil), m...)})
	}
	return &planpb.Operator{OpType: planpb.UnionOperatorType, UnionOp: op}, nil
}

func (u *Union) copyFrom(src Node, _ copyMap) error {
	other := src.(*Union)
	u.copyFromOperator(other)
	for _, m := range other.columnMappings {
		u.AddColumnMapping(m)
	}
	return nil
}
