package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpMap(t *testing.T) {
	for _, tt := range []struct {
		symbol     string
		opcode     int64
		engineName string
	}{
		{"*", 0, "multiply"},
		{"-", 1, "subtract"},
		{"+", 2, "add"},
		{"/", 3, "divide"},
		{"==", 4, "equal"},
		{"!=", 5, "notEqual"},
		{"<=", 6, "lessThanEqual"},
		{">=", 7, "greaterThanEqual"},
		{"<", 8, "lessThan"},
		{">", 9, "greaterThan"},
		{"and", 10, "logicalAnd"},
		{"or", 11, "logicalOr"},
		{"%", 12, "modulo"},
	} {
		t.Run(tt.symbol, func(t *testing.T) {
			op, ok := OpMap[tt.symbol]
			require.True(t, ok)
			require.Equal(t, tt.symbol, op.Symbol)
			require.Equal(t, tt.opcode, op.Opcode)
			require.Equal(t, tt.engineName, op.EngineName)
		})
	}
	require.Len(t, OpMap, 13)
}

func TestCreateOpFunc(t *testing.T) {
	g := New()
	lhs, err := g.CreateInt(1)
	require.NoError(t, err)
	rhs, err := g.CreateInt(2)
	require.NoError(t, err)

	fn, err := g.CreateOpFunc(OpMap["*"], []Expression{lhs, rhs})
	require.NoError(t, err)
	require.Equal(t, "pl.multiply", fn.Name)
	require.Equal(t, "*", fn.Symbol)
	require.Equal(t, OpMap["*"].Opcode, fn.Opcode)
	require.Equal(t, int64(-1), fn.FuncID())
	require.Len(t, fn.Args(), 2)
	require.True(t, g.HasEdge(fn, lhs))
	require.True(t, g.HasEdge(fn, rhs))
}

func TestCreateFuncPrefixesName(t *testing.T) {
	g := New()
	fn, err := g.CreateFunc("mean", nil)
	require.NoError(t, err)
	require.Equal(t, "pl.mean", fn.Name)

	prefixed, err := g.CreateFunc("pl.mean", nil)
	require.NoError(t, err)
	require.Equal(t, "pl.mean", prefixed.Name)

	// Plain calls carry no opcode.
	require.Equal(t, int64(-1), fn.Opcode)
}

func TestAddOrCloneArg(t *testing.T) {
	g := New()
	lit, err := g.CreateInt(5)
	require.NoError(t, err)
	owner, err := g.CreateOpFunc(OpMap["+"], []Expression{lit})
	require.NoError(t, err)

	other, err := g.CreateOpFunc(OpMap["-"], nil)
	require.NoError(t, err)

	// The literal already belongs to owner, so a clone is attached.
	require.NoError(t, other.AddOrCloneArg(lit))
	require.Len(t, other.Args(), 1)
	require.NotEqual(t, lit.ID(), other.Args()[0].ID())
	require.Equal(t, int64(5), other.Args()[0].(*Int).Value)
	// The original stays with its owner.
	require.Equal(t, lit.ID(), owner.Args()[0].ID())

	// An unowned expression is attached as-is.
	free, err := g.CreateInt(6)
	require.NoError(t, err)
	require.NoError(t, other.AddOrCloneArg(free))
	require.Equal(t, free.ID(), other.Args()[1].ID())
}

func TestUpdateArg(t *testing.T) {
	g := New()
	a, err := g.CreateInt(1)
	require.NoError(t, err)
	b, err := g.CreateInt(2)
	require.NoError(t, err)
	fn, err := g.CreateOpFunc(OpMap["+"], []Expression{a, b})
	require.NoError(t, err)

	c, err := g.CreateInt(3)
	require.NoError(t, err)
	require.NoError(t, fn.UpdateArg(1, c))
	require.Equal(t, c.ID(), fn.Args()[1].ID())
	require.False(t, g.HasEdge(fn, b))
	require.True(t, g.HasEdge(fn, c))

	require.Error(t, fn.UpdateArg(5, c))
}

func TestReplaceArg(t *testing.T) {
	g := New()
	a, err := g.CreateInt(1)
	require.NoError(t, err)
	fn, err := g.CreateOpFunc(OpMap["+"], []Expression{a})
	require.NoError(t, err)

	b, err := g.CreateInt(2)
	require.NoError(t, err)
	require.NoError(t, fn.ReplaceArg(a, b))
	require.Equal(t, b.ID(), fn.Args()[0].ID())

	require.ErrorContains(t, fn.ReplaceArg(a, b), "is not an argument")
}

func TestArgTypesRequireResolution(t *testing.T) {
	g := New()
	col, err := g.CreateColumn("x", 0)
	require.NoError(t, err)
	fn, err := g.CreateOpFunc(OpMap["+"], []Expression{col})
	require.NoError(t, err)

	_, err = fn.ArgTypes()
	require.ErrorContains(t, err, "has no resolved type")
}
