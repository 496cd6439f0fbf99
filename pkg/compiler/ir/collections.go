package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// collectionExpression is the shared body of List and Tuple: an ordered
// set of child expressions referenced by id. Collections exist only while
// analysis passes consume them; they have no wire representation.
type collectionExpression struct {
	baseExpression

	childIDs []int64
}

// Children returns the collection's expressions in order.
func (c *collectionExpression) Children() []Expression {
	out := make([]Expression, len(c.childIDs))
	for i, id := range c.childIDs {
		expr, ok := c.graph.Get(id).(Expression)
		if !ok {
			panic(fmt.Sprintf("ir: child %d of collection %d is missing or not an expression", id, c.id))
		}
		out[i] = expr
	}
	return out
}

// AddChild appends expr to the collection and records the ownership edge.
func (c *collectionExpression) AddChild(expr Expression) error {
	c.childIDs = append(c.childIDs, expr.ID())
	return c.graph.addEdgeByID(c.id, expr.ID())
}

func (c *collectionExpression) initChildren(children []Expression) error {
	for _, child := range children {
		if err := c.AddChild(child); err != nil {
			return err
		}
	}
	return nil
}

func (c *collectionExpression) copyChildrenFrom(src *collectionExpression, copied copyMap) error {
	for _, child := range src.Children() {
		childCopy, err := c.graph.copyNode(child, copied)
		if err != nil {
			return err
		}
		if err := c.AddChild(childCopy.(Expression)); err != nil {
			return err
		}
	}
	return nil
}

// List is an ordered homogeneous collection literal.
type List struct {
	collectionExpression
}

var _ Expression = (*List)(nil)

// Init sets the list elements.
func (l *List) Init(children []Expression) error {
	return l.initChildren(children)
}

func (l *List) DebugString() string {
	return fmt.Sprintf("List(id=%d, len=%d)", l.id, len(l.childIDs))
}

func (l *List) ToProto() (*planpb.ScalarExpression, error) {
	return nil, unimplementedError(l, "lists cannot be lowered to the plan format")
}

func (l *List) copyFrom(src Node, copied copyMap) error {
	other := src.(*List)
	l.copyFromExpression(other)
	return l.copyChildrenFrom(&other.collectionExpression, copied)
}

// Tuple is an ordered heterogeneous collection literal.
type Tuple struct {
	collectionExpression
}

var _ Expression = (*Tuple)(nil)

// Init sets the tuple elements.
func (t *Tuple) Init(children []Expression) error {
	return t.initChildren(children)
}

func (t *Tuple) DebugString() string {
	return fmt.Sprintf("Tuple(id=%d, len=%d)", t.id, len(t.childIDs))
}

func (t *Tuple) ToProto() (*planpb.ScalarExpression, error) {
	return nil, unimplementedError(t, "tuples cannot be lowered to the plan format")
}

func (t *Tuple) copyFrom(src Node, copied copyMap) error {
	other := src.(*Tuple)
	t.copyFromExpression(other)
	return t.copyChildrenFrom(&other.collectionExpression, copied)
}
