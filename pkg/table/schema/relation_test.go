package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

func TestNewRelation(t *testing.T) {
	r, err := NewRelation(
		[]string{"time_", "latency"},
		[]typespb.DataType{typespb.Time64NS, typespb.Float64},
	)
	require.NoError(t, err)
	require.Equal(t, 2, r.NumColumns())
	require.Equal(t, "time_", r.ColName(0))
	require.Equal(t, typespb.Float64, r.ColType(1))

	_, err = NewRelation([]string{"a"}, nil)
	require.EqualError(t, err, "mismatched number of column names (1) and types (0)")
}

func TestAddColumnRejectsDuplicates(t *testing.T) {
	var r Relation
	require.NoError(t, r.AddColumn("svc", typespb.String))
	require.EqualError(t, r.AddColumn("svc", typespb.String), `relation already has column "svc"`)
}

func TestColumnLookups(t *testing.T) {
	r, err := NewRelation([]string{"a", "b"}, []typespb.DataType{typespb.Int64, typespb.Boolean})
	require.NoError(t, err)

	require.True(t, r.HasColumn("a"))
	require.False(t, r.HasColumn("c"))
	require.Equal(t, 1, r.ColIndex("b"))
	require.Equal(t, -1, r.ColIndex("c"))

	typ, err := r.GetColumnType("b")
	require.NoError(t, err)
	require.Equal(t, typespb.Boolean, typ)

	_, err = r.GetColumnType("c")
	require.EqualError(t, err, `relation has no column "c"`)
}

func TestEqual(t *testing.T) {
	a, err := NewRelation([]string{"a"}, []typespb.DataType{typespb.Int64})
	require.NoError(t, err)
	b, err := NewRelation([]string{"a"}, []typespb.DataType{typespb.Int64})
	require.NoError(t, err)
	c, err := NewRelation([]string{"a"}, []typespb.DataType{typespb.Float64})
	require.NoError(t, err)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(Relation{}))
}

func TestString(t *testing.T) {
	r, err := NewRelation([]string{"a", "b"}, []typespb.DataType{typespb.Int64, typespb.String})
	require.NoError(t, err)
	require.Equal(t, "[a:INT64, b:STRING]", r.String())
}
