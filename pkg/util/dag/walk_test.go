package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildWalkGraph(t *testing.T) *DAG {
	t.Helper()
	d := New()
	for _, id := range []int64{1, 2, 3, 4, 5} {
		d.AddNode(id)
	}
	// 1 -> 2 -> 4, 1 -> 3 -> 4, 4 -> 5; node 5 reachable once.
	for _, e := range [][2]int64{{1, 2}, {1, 3}, {2, 4}, {3, 4}, {4, 5}} {
		require.NoError(t, d.AddEdge(e[0], e[1]))
	}
	return d
}

func TestPreOrderWalk(t *testing.T) {
	d := buildWalkGraph(t)

	var got []int64
	require.NoError(t, d.Walk(1, func(id int64) error {
		got = append(got, id)
		return nil
	}, PreOrderWalk))
	require.Equal(t, []int64{1, 2, 4, 5, 3}, got)
}

func TestPostOrderWalk(t *testing.T) {
	d := buildWalkGraph(t)

	var got []int64
	require.NoError(t, d.Walk(1, func(id int64) error {
		got = append(got, id)
		return nil
	}, PostOrderWalk))
	require.Equal(t, []int64{5, 4, 2, 3, 1}, got)
}

func TestWalkUnreachableNodesSkipped(t *testing.T) {
	d := buildWalkGraph(t)

	var got []int64
	require.NoError(t, d.Walk(3, func(id int64) error {
		got = append(got, id)
		return nil
	}, PreOrderWalk))
	require.Equal(t, []int64{3, 4, 5}, got)
}

func TestWalkStopsOnError(t *testing.T) {
	d := buildWalkGraph(t)
	boom := errors.New("boom")

	var got []int64
	err := d.Walk(1, func(id int64) error {
		got = append(got, id)
		if id == 4 {
			return boom
		}
		return nil
	}, PreOrderWalk)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []int64{1, 2, 4}, got)
}

func TestWalkRejectsUnknownOrder(t *testing.T) {
	d := buildWalkGraph(t)
	require.Error(t, d.Walk(1, func(int64) error { return nil }, WalkOrder(9)))
}
