package ir

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestDebugStringGolden(t *testing.T) {
	lg := buildLinearGraph(t)

	g := goldie.New(t)
	g.Assert(t, "ir_debug", []byte(lg.g.DebugString()))
}

func TestNodeDebugStrings(t *testing.T) {
	lg := buildLinearGraph(t)

	require.Equal(t, `MemorySource(id=0, table="http_events")`, lg.src.DebugString())
	require.Equal(t, `Column(id=1, "latency")`, lg.col.DebugString())
	require.Equal(t, "Int(id=2, 1)", lg.one.DebugString())
	require.Equal(t, "Func(id=3, pl.add)", lg.fn.DebugString())
	require.Equal(t, "Map(id=4, columns=1)", lg.m.DebugString())
	require.Equal(t, `MemorySink(id=5, name="out")`, lg.sink.DebugString())
}

func TestKindStrings(t *testing.T) {
	require.Equal(t, "MemorySource", KindMemorySource.String())
	require.Equal(t, "Func", KindFunc.String())
	require.Equal(t, "Invalid", KindInvalid.String())
	require.Equal(t, "NodeKind(99)", NodeKind(99).String())
}
