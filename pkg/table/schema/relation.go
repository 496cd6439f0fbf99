// Package schema describes the output shape of an operator: an ordered
// list of named, typed columns.
package schema

import (
	"fmt"
	"strings"

	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

// Relation is an ordered schema of (column name, data type) pairs. The
// zero value is an empty relation ready for use.
type Relation struct {
	colNames []string
	colTypes []typespb.DataType
}

// NewRelation builds a relation from parallel name and type slices.
func NewRelation(names []string, types []typespb.DataType) (Relation, error) {
	if len(names) != len(types) {
		return Relation{}, fmt.Errorf("mismatched number of column names (%d) and types (%d)", len(names), len(types))
	}
	var r Relation
	for i := range names {
		if err := r.AddColumn(names[i], types[i]); err != nil {
			return Relation{}, err
		}
	}
	return r, nil
}

// AddColumn appends a column to the relation. Column names must be unique
// within a relation.
func (r *Relation) AddColumn(name string, typ typespb.DataType) error {
	if r.HasColumn(name) {
		return fmt.Errorf("relation already has column %q", name)
	}
	r.colNames = append(r.colNames, name)
	r.colTypes = append(r.colTypes, typ)
	return nil
}

// HasColumn reports whether the relation contains a column named name.
func (r Relation) HasColumn(name string) bool {
	return r.ColIndex(name) >= 0
}

// ColIndex returns the position of name within the relation, or -1 if the
// column does not exist.
func (r Relation) ColIndex(name string) int {
	for i, n := range r.colNames {
		if n == name {
			return i
		}
	}
	return -1
}

// ColName returns the name of the column at idx.
func (r Relation) ColName(idx int) string {
	return r.colNames[idx]
}

// ColType returns the type of the column at idx.
func (r Relation) ColType(idx int) typespb.DataType {
	return r.colTypes[idx]
}

// GetColumnType returns the type of the column named name.
func (r Relation) GetColumnType(name string) (typespb.DataType, error) {
	idx := r.ColIndex(name)
	if idx < 0 {
		return typespb.DataTypeUnknown, fmt.Errorf("relation has no column %q", name)
	}
	return r.colTypes[idx], nil
}

// ColNames returns the ordered column names.
func (r Relation) ColNames() []string {
	out := make([]string, len(r.colNames))
	copy(out, r.colNames)
	return out
}

// ColTypes returns the ordered column types.
func (r Relation) ColTypes() []typespb.DataType {
	out := make([]typespb.DataType, len(r.colTypes))
	copy(out, r.colTypes)
	return out
}

// NumColumns returns the number of columns in the relation.
func (r Relation) NumColumns() int {
	return len(r.colNames)
}

// Equal reports whether two relations have identical columns in identical
// order.
func (r Relation) Equal(other Relation) bool {
	if len(r.colNames) != len(other.colNames) {
		return false
	}
	for i := range r.colNames {
		if r.colNames[i] != other.colNames[i] || r.colTypes[i] != other.colTypes[i] {
			return false
		}
	}
	return true
}

// String renders the relation as [name:TYPE, ...].
func (r Relation) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range r.colNames {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s:%s", r.colNames[i], r.colTypes[i])
	}
	sb.WriteByte(']')
	return sb.String()
}
