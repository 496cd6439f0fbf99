package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeErrorfAnnotatesPosition(t *testing.T) {
	g := New()
	n, err := g.CreateInt(1)
	require.NoError(t, err)

	// Without a position the message is used verbatim.
	require.EqualError(t, NodeErrorf(n, "bad value %d", 7), "bad value 7")

	n.SetPos(Position{Line: 3, Col: 14})
	require.True(t, n.PosSet())
	require.EqualError(t, NodeErrorf(n, "bad value %d", 7), "line 3, col 14: bad value 7")
}

func TestNodeErrorfNilNode(t *testing.T) {
	require.EqualError(t, NodeErrorf(nil, "standalone"), "standalone")
}

func TestOperatorErrorsCarryPosition(t *testing.T) {
	lg := buildLinearGraph(t)

	// Errors raised by the shared operator methods pick up the node's
	// position like any other semantic error.
	lg.sink.SetPos(Position{Line: 5, Col: 9})
	err := lg.sink.RemoveParent(lg.src)
	require.EqualError(t, err, "line 5, col 9: operator 0 is not a parent of operator 5")
}

func TestCreateStampsPositionBeforeInit(t *testing.T) {
	g := New()
	src, err := g.CreateMemorySource("http_events", nil, At(Position{Line: 2, Col: 4}))
	require.NoError(t, err)
	require.True(t, src.PosSet())
	require.Equal(t, Position{Line: 2, Col: 4}, src.Pos())

	// The position is attached before Init runs, so construction-time
	// semantic errors are already annotated.
	_, err = g.CreateLimit(src, -1, At(Position{Line: 3, Col: 7}))
	require.EqualError(t, err, "line 3, col 7: limit must be non-negative, got -1")
}

func TestPositionSurvivesCopy(t *testing.T) {
	g := New()
	n, err := g.CreateInt(1)
	require.NoError(t, err)
	n.SetPos(Position{Line: 8, Col: 2})

	copied, err := g.CopyNode(n)
	require.NoError(t, err)
	require.True(t, copied.PosSet())
	require.Equal(t, Position{Line: 8, Col: 2}, copied.Pos())
}

func TestNodeClassification(t *testing.T) {
	lg := buildLinearGraph(t)

	require.True(t, lg.src.IsOperator())
	require.False(t, lg.src.IsExpression())
	require.True(t, lg.col.IsExpression())
	require.False(t, lg.col.IsOperator())

	require.True(t, lg.src.IsSource())
	require.False(t, lg.src.IsBlocking())
	require.True(t, lg.sink.IsBlocking())
	require.False(t, lg.m.IsBlocking())
}
