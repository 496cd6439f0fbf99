package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapColumnExpressions(t *testing.T) {
	lg := buildLinearGraph(t)

	exprs := lg.m.ColumnExpressions()
	require.Len(t, exprs, 1)
	require.Equal(t, "x", exprs[0].Name)
	require.Equal(t, lg.fn.ID(), exprs[0].Expr.ID())
}

func TestMapUpdateColumnExpression(t *testing.T) {
	lg := buildLinearGraph(t)

	repl, err := lg.g.CreateColumn("latency", 0)
	require.NoError(t, err)
	require.NoError(t, lg.m.UpdateColumnExpression(0, ColumnExpression{Name: "latency", Expr: repl}))

	exprs := lg.m.ColumnExpressions()
	require.Equal(t, "latency", exprs[0].Name)
	require.Equal(t, repl.ID(), exprs[0].Expr.ID())
	require.False(t, lg.g.HasEdge(lg.m, lg.fn))
	require.True(t, lg.g.HasEdge(lg.m, repl))

	require.Error(t, lg.m.UpdateColumnExpression(3, ColumnExpression{Name: "z", Expr: repl}))
}

func TestMapSetColumnExpressionsRewiresEdges(t *testing.T) {
	lg := buildLinearGraph(t)

	a, err := lg.g.CreateColumn("latency", 0)
	require.NoError(t, err)
	b, err := lg.g.CreateColumn("service", 0)
	require.NoError(t, err)
	require.NoError(t, lg.m.SetColumnExpressions([]ColumnExpression{
		{Name: "latency", Expr: a},
		{Name: "service", Expr: b},
	}))

	require.Len(t, lg.m.ColumnExpressions(), 2)
	require.False(t, lg.g.HasEdge(lg.m, lg.fn))
}

func TestDropInit(t *testing.T) {
	lg := buildLinearGraph(t)

	d, err := lg.g.CreateDrop(lg.m, []string{"x"})
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, d.DroppedColumns)
	require.True(t, d.IsChildOf(lg.m))
}
