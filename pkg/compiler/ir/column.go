package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

// Column references a named column produced by one of the parents of the
// operator that contains this expression. The parent is identified by its
// index into the containing operator's parent list, never by a pointer:
// the reference survives parent replacement and whole-graph cloning
// unchanged.
type Column struct {
	baseExpression

	ColName string
	// ContainerOpParentIdx selects which parent of the containing
	// operator the column reads from.
	ContainerOpParentIdx int64

	colIdx int64
	idxSet bool
}

var _ Expression = (*Column)(nil)

// Init sets the column name and the parent index within the operator
// that will own this expression.
func (c *Column) Init(colName string, containerOpParentIdx int64) error {
	if containerOpParentIdx < 0 {
		return NodeErrorf(c, "invalid parent index %d for column %q", containerOpParentIdx, colName)
	}
	c.ColName = colName
	c.ContainerOpParentIdx = containerOpParentIdx
	c.colIdx = -1
	return nil
}

func (c *Column) DebugString() string {
	return fmt.Sprintf("Column(id=%d, %q)", c.id, c.ColName)
}

// ColIdx returns the resolved column index; meaningful only if
// IndexResolved reports true.
func (c *Column) ColIdx() int64 { return c.colIdx }

// IndexResolved reports whether ResolveColumn has run on this node.
func (c *Column) IndexResolved() bool { return c.idxSet }

// ResolveColumn records the column's position and type within the
// referenced operator's relation.
func (c *Column) ResolveColumn(colIdx int64, t typespb.DataType) {
	c.colIdx = colIdx
	c.SetDataType(t)
	c.idxSet = true
}

// ContainingOperators walks the graph upward from this expression to the
// operators that own it. An expression shared by several operators (via
// clone-free reuse) reports all of them.
func (c *Column) ContainingOperators() ([]Operator, error) {
	return containingOperators(c.graph, c.id)
}

// containingOperators follows parent edges from an expression node until
// it reaches operator nodes. Edges between expressions are followed
// transitively so nested function arguments still find their operator.
func containingOperators(g *IR, id int64) ([]Operator, error) {
	var ops []Operator
	seen := map[int64]bool{}
	var visit func(int64) error
	visit = func(nid int64) error {
		for _, pid := range g.dag.Parents(nid) {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			parent := g.Get(pid)
			if parent == nil {
				return fmt.Errorf("node %d references missing parent %d", nid, pid)
			}
			if op, ok := parent.(Operator); ok {
				ops = append(ops, op)
				continue
			}
			if err := visit(pid); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(id); err != nil {
		return nil, err
	}
	return ops, nil
}

// ReferencedOperator resolves the operator whose relation this column
// reads from: parent ContainerOpParentIdx of the containing operator.
// When the expression is shared by several containing operators, they
// must all agree on that parent.
func (c *Column) ReferencedOperator() (Operator, error) {
	containing, err := c.ContainingOperators()
	if err != nil {
		return nil, err
	}
	if len(containing) == 0 {
		return nil, NodeErrorf(c, "column %q is not held by any operator", c.ColName)
	}
	var ref Operator
	for _, op := range containing {
		parents := op.Parents()
		if int(c.ContainerOpParentIdx) >= len(parents) {
			return nil, NodeErrorf(c, "column %q references parent %d of operator %d, which has only %d parents",
				c.ColName, c.ContainerOpParentIdx, op.ID(), len(parents))
		}
		candidate := parents[c.ContainerOpParentIdx]
		if ref == nil {
			ref = candidate
			continue
		}
		if ref.ID() != candidate.ID() {
			return nil, NodeErrorf(c, "column %q is shared by operators that disagree on parent %d",
				c.ColName, c.ContainerOpParentIdx)
		}
	}
	return ref, nil
}

func (c *Column) ToProto() (*planpb.ScalarExpression, error) {
	col, err := c.columnProto()
	if err != nil {
		return nil, err
	}
	return &planpb.ScalarExpression{Column: col}, nil
}

func (c *Column) columnProto() (*planpb.Column, error) {
	if !c.idxSet {
		return nil, NodeErrorf(c, "column %q has not been resolved", c.ColName)
	}
	ref, err := c.ReferencedOperator()
	if err != nil {
		return nil, err
	}
	return &planpb.Column{Node: ref.ID(), Index: c.colIdx}, nil
}

func (c *Column) copyFrom(src Node, _ copyMap) error {
	other := src.(*Column)
	c.copyFromExpression(other)
	c.ColName = other.ColName
	c.ContainerOpParentIdx = other.ContainerOpParentIdx
	c.colIdx = other.colIdx
	c.idxSet = other.idxSet
	return nil
}
