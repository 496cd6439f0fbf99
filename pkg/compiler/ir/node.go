// Package ir implements the intermediate representation of a compiled
// query: a DAG of operator and expression nodes owned by a single graph
// arena, mutated in place by analysis passes, and finally lowered into
// the physical-plan wire format.
package ir

import (
	"errors"
	"fmt"
)

// ErrUnimplemented marks operations on IR-only scaffold kinds that have
// no physical-plan representation and must be rewritten away before
// lowering. Match with errors.Is.
var ErrUnimplemented = errors.New("unimplemented")

// Position is the source location (from the query front-end) attached to
// a node for diagnostics. The zero value means "not set".
type Position struct {
	Line int64
	Col  int64
}

// Node is the common behavior of every IR node. The interface contains
// unexported methods so the set of implementations is closed to this
// package.
type Node interface {
	// ID returns the node's identifier, unique within its owning graph.
	ID() int64
	// Kind returns the node's immutable variant tag.
	Kind() NodeKind
	// Graph returns the graph that owns this node.
	Graph() *IR
	// Pos returns the node's source position; meaningful only if PosSet.
	Pos() Position
	// PosSet reports whether a source position was attached at creation.
	PosSet() bool
	// DebugString renders the node for logs and golden tests.
	DebugString() string
	// IsOperator reports whether the node is a pipeline stage.
	IsOperator() bool
	// IsExpression reports whether the node produces a value.
	IsExpression() bool
	// SetPos attaches a source position for diagnostics.
	SetPos(pos Position)

	attach(g *IR, id int64, kind NodeKind)
	copyFrom(src Node, copied copyMap) error
}

// copyMap tracks source-to-copy pairs within one top-level clone
// invocation so shared subgraphs are copied exactly once.
type copyMap map[Node]Node

// Positioned is the part of a node that error annotation needs. The
// embedded base types satisfy it, so shared method sets can report
// errors without going through the concrete node.
type Positioned interface {
	Pos() Position
	PosSet() bool
}

// NodeErrorf builds a user-facing semantic error, annotated with the
// node's source position when one is available. These errors abort the
// current compilation and are shown to the query author verbatim.
func NodeErrorf(n Positioned, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if n != nil && n.PosSet() {
		return fmt.Errorf("line %d, col %d: %w", n.Pos().Line, n.Pos().Col, err)
	}
	return err
}

func unimplementedError(n Node, what string) error {
	return NodeErrorf(n, "%w: %s", ErrUnimplemented, what)
}

// baseNode carries the state shared by every node: identity, kind tag,
// the non-owning back-reference to the owning graph, and the optional
// source position. It is set exactly once, when the factory registers
// the node.
type baseNode struct {
	id     int64
	kind   NodeKind
	graph  *IR
	pos    Position
	posSet bool
}

func (b *baseNode) ID() int64      { return b.id }
func (b *baseNode) Kind() NodeKind { return b.kind }
func (b *baseNode) Graph() *IR     { return b.graph }
func (b *baseNode) Pos() Position  { return b.pos }
func (b *baseNode) PosSet() bool   { return b.posSet }

func (b *baseNode) DebugString() string {
	return fmt.Sprintf("%s(id=%d)", b.kind, b.id)
}

func (b *baseNode) attach(g *IR, id int64, kind NodeKind) {
	if b.graph != nil {
		panic(fmt.Sprintf("ir: node %d attached to a graph twice", b.id))
	}
	b.graph = g
	b.id = id
	b.kind = kind
}

// SetPos attaches a source position for diagnostics.
func (b *baseNode) SetPos(pos Position) {
	b.pos = pos
	b.posSet = true
}

// copyFromBase copies the position metadata shared by all kinds. The
// kind-specific copyFrom implementations call this first.
func (b *baseNode) copyFromBase(src Node) {
	if src.PosSet() {
		b.SetPos(src.Pos())
	}
}
