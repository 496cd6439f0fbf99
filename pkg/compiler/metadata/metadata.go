// Package metadata describes the entity-metadata attributes a query may
// reference (pod names, service names, container ids, and so on) and how
// each attribute is materialized as a column from a backing key column.
package metadata

import (
	"fmt"
	"strings"

	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

// ColumnPrefix marks relation columns that carry materialized metadata.
const ColumnPrefix = "_attr_"

// UPIDColumn is the key column metadata attributes are derived from.
const UPIDColumn = "upid"

// FormatColumnName returns the relation column name for an attribute.
func FormatColumnName(attr string) string {
	return ColumnPrefix + attr
}

// IsMetadataColumn reports whether a relation column carries metadata.
func IsMetadataColumn(col string) bool {
	return strings.HasPrefix(col, ColumnPrefix)
}

// AttributeFromColumn strips the metadata prefix from a column name.
func AttributeFromColumn(col string) string {
	return strings.TrimPrefix(col, ColumnPrefix)
}

// Property describes one metadata attribute: its type, the key columns
// it can be derived from, and the value format it accepts in comparisons.
type Property interface {
	// Name returns the attribute name, e.g. "pod_name".
	Name() string
	// ColumnType returns the data type of the materialized column.
	ColumnType() typespb.DataType
	// KeyColumns lists the relation columns the attribute can be derived
	// from, in preference order.
	KeyColumns() []string
	// FitsFormat reports whether a literal value is well-formed for this
	// attribute.
	FitsFormat(value string) bool
	// ExplainFormat describes the accepted value format for error
	// messages.
	ExplainFormat() string
}

// UDFName returns the registry name of the scalar function that derives
// the attribute from the given key column.
func UDFName(p Property, keyColumn string) string {
	return fmt.Sprintf("%s_to_%s", keyColumn, p.Name())
}

// HasKeyColumn reports whether the attribute can be derived from col.
func HasKeyColumn(p Property, col string) bool {
	for _, key := range p.KeyColumns() {
		if key == col {
			return true
		}
	}
	return false
}

// NameProperty is a string attribute whose values are namespaced, written
// "namespace/name".
type NameProperty struct {
	name string
	keys []string
}

var _ Property = (*NameProperty)(nil)

func (p *NameProperty) Name() string                 { return p.name }
func (p *NameProperty) ColumnType() typespb.DataType { return typespb.String }
func (p *NameProperty) KeyColumns() []string         { return p.keys }
func (p *NameProperty) ExplainFormat() string        { return "namespace/name" }

func (p *NameProperty) FitsFormat(value string) bool {
	parts := strings.Split(value, "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// IDProperty is a string attribute with opaque values.
type IDProperty struct {
	name string
	keys []string
}

var _ Property = (*IDProperty)(nil)

func (p *IDProperty) Name() string                 { return p.name }
func (p *IDProperty) ColumnType() typespb.DataType { return typespb.String }
func (p *IDProperty) KeyColumns() []string         { return p.keys }
func (p *IDProperty) FitsFormat(string) bool       { return true }
func (p *IDProperty) ExplainFormat() string        { return "any string" }

// Handler resolves attribute names, including aliases, to properties.
type Handler struct {
	properties map[string]Property
}

// NewHandler returns a handler populated with the built-in attributes.
func NewHandler() *Handler {
	h := &Handler{properties: map[string]Property{}}

	upidKeys := []string{UPIDColumn}
	h.add(&NameProperty{name: "pod_name", keys: upidKeys}, "pod")
	h.add(&NameProperty{name: "service_name", keys: upidKeys}, "service")
	h.add(&NameProperty{name: "deployment_name", keys: upidKeys}, "deployment")
	h.add(&IDProperty{name: "pod_id", keys: upidKeys})
	h.add(&IDProperty{name: "service_id", keys: upidKeys})
	h.add(&IDProperty{name: "container_id", keys: upidKeys})
	h.add(&IDProperty{name: "namespace", keys: upidKeys})
	return h
}

func (h *Handler) add(p Property, aliases ...string) {
	h.properties[p.Name()] = p
	for _, alias := range aliases {
		h.properties[alias] = p
	}
}

// Lookup resolves an attribute name or alias.
func (h *Handler) Lookup(name string) (Property, error) {
	p, ok := h.properties[name]
	if !ok {
		return nil, fmt.Errorf("metadata attribute %q is not defined", name)
	}
	return p, nil
}

// Has reports whether the attribute name or alias is defined.
func (h *Handler) Has(name string) bool {
	_, ok := h.properties[name]
	return ok
}
