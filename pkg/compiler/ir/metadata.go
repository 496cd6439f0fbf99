package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/compiler/metadata"
	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// Metadata is a column expression that refers to an entity-metadata
// attribute rather than a relation column. A resolution pass binds it to
// a property and renames it to the materialized column produced by a
// MetadataResolver.
type Metadata struct {
	Column

	// AttrName is the attribute the query referenced, e.g. "pod_name".
	AttrName string

	property metadata.Property
}

var _ Expression = (*Metadata)(nil)

// Init records the attribute name. Until resolution binds a property,
// the column name is the raw attribute name.
func (m *Metadata) Init(attrName string, containerOpParentIdx int64) error {
	m.AttrName = attrName
	return m.Column.Init(attrName, containerOpParentIdx)
}

func (m *Metadata) DebugString() string {
	return fmt.Sprintf("Metadata(id=%d, %q)", m.id, m.AttrName)
}

// Property returns the bound property; nil before resolution.
func (m *Metadata) Property() metadata.Property { return m.property }

// HasProperty reports whether resolution has bound a property.
func (m *Metadata) HasProperty() bool { return m.property != nil }

// BindProperty binds the attribute to its property and redirects the
// column at the materialized metadata column.
func (m *Metadata) BindProperty(p metadata.Property) {
	m.property = p
	m.ColName = metadata.FormatColumnName(p.Name())
	m.SetDataType(p.ColumnType())
}

func (m *Metadata) copyFrom(src Node, copied copyMap) error {
	other := src.(*Metadata)
	if err := m.Column.copyFrom(&other.Column, copied); err != nil {
		return err
	}
	m.AttrName = other.AttrName
	m.property = other.property
	return nil
}

// MetadataLiteral wraps a plain literal that appears in a comparison
// against a Metadata column, so resolution passes can validate its format
// against the bound property.
type MetadataLiteral struct {
	baseExpression

	literalID int64
}

var _ Datum = (*MetadataLiteral)(nil)

// Init wraps the given literal.
func (m *MetadataLiteral) Init(literal Datum) error {
	m.literalID = literal.ID()
	if literal.TypeResolved() {
		m.SetDataType(literal.DataType())
	}
	return m.graph.addEdgeByID(m.id, literal.ID())
}

func (m *MetadataLiteral) DebugString() string {
	return fmt.Sprintf("MetadataLiteral(id=%d, literal=%d)", m.id, m.literalID)
}

// Literal returns the wrapped literal.
func (m *MetadataLiteral) Literal() Datum {
	d, ok := m.graph.Get(m.literalID).(Datum)
	if !ok {
		panic(fmt.Sprintf("ir: literal %d of metadata literal %d is missing or not a datum", m.literalID, m.id))
	}
	return d
}

func (m *MetadataLiteral) ValueProto() (*planpb.ScalarValue, error) {
	return m.Literal().ValueProto()
}

func (m *MetadataLiteral) ToProto() (*planpb.ScalarExpression, error) {
	return m.Literal().ToProto()
}

func (m *MetadataLiteral) copyFrom(src Node, copied copyMap) error {
	other := src.(*MetadataLiteral)
	m.copyFromExpression(other)
	litCopy, err := m.graph.copyNode(other.Literal(), copied)
	if err != nil {
		return err
	}
	return m.Init(litCopy.(Datum))
}

// ExprFitsFormat reports whether the literal expression matches p's
// value format. MetadataLiteral wrappers are unwrapped first; only
// string literals can fit a format.
func ExprFitsFormat(p metadata.Property, e Expression) bool {
	if ml, ok := e.(*MetadataLiteral); ok {
		e = ml.Literal()
	}
	if s, ok := e.(*String); ok {
		return p.FitsFormat(s.Value)
	}
	return false
}

// MetadataResolver is a scaffold operator inserted between a metadata
// reference and its parent. It accumulates the properties the subtree
// needs; a rewrite pass replaces it with a Map that evaluates the
// derivation functions, so it never lowers.
type MetadataResolver struct {
	baseOperator

	columns map[string]metadata.Property
}

var _ Operator = (*MetadataResolver)(nil)

// Init attaches the resolver beneath its parent operator.
func (m *MetadataResolver) Init(parent Operator) error {
	m.columns = map[string]metadata.Property{}
	return m.AddParent(parent)
}

// AddProperty records that the subtree needs the attribute materialized.
func (m *MetadataResolver) AddProperty(p metadata.Property) {
	m.columns[p.Name()] = p
}

// HasProperty reports whether the attribute is already recorded.
func (m *MetadataResolver) HasProperty(name string) bool {
	_, ok := m.columns[name]
	return ok
}

// Properties returns the recorded attributes keyed by name.
func (m *MetadataResolver) Properties() map[string]metadata.Property {
	return m.columns
}

func (m *MetadataResolver) ToProto() (*planpb.Operator, error) {
	return nil, unimplementedError(m, "metadata resolvers must be rewritten before lowering")
}

func (m *MetadataResolver) copyFrom(src Node, _ copyMap) error {
	other := src.(*MetadataResolver)
	m.copyFromOperator(other)
	m.columns = make(map[string]metadata.Property, len(other.columns))
	for name, p := range other.columns {
		m.columns[name] = p
	}
	return nil
}
