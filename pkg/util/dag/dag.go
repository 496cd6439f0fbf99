// Package dag provides the directed acyclic graph substrate used by the
// compiler IR. It tracks adjacency between integer node identifiers and
// has no knowledge of node content.
package dag

import (
	"fmt"
	"slices"
)

// DAG is a directed acyclic graph over int64 node identifiers. Edges are
// kept in insertion order per node, and all iteration entry points
// (TopologicalSort, Nodes) are deterministic so that downstream consumers
// can rely on stable ordering.
//
// DAG does not detect cycles on insertion; callers are expected to only
// build acyclic structures.
type DAG struct {
	nodes    map[int64]struct{}
	children map[int64][]int64
	parents  map[int64][]int64
}

// New returns an empty DAG.
func New() *DAG {
	return &DAG{
		nodes:    make(map[int64]struct{}),
		children: make(map[int64][]int64),
		parents:  make(map[int64][]int64),
	}
}

// AddNode registers id with the graph. Adding an existing id is a no-op.
func (d *DAG) AddNode(id int64) {
	d.nodes[id] = struct{}{}
}

// HasNode reports whether id is registered with the graph.
func (d *DAG) HasNode(id int64) bool {
	_, ok := d.nodes[id]
	return ok
}

// NumNodes returns the number of registered nodes.
func (d *DAG) NumNodes() int {
	return len(d.nodes)
}

// Nodes returns all registered node ids in ascending order.
func (d *DAG) Nodes() []int64 {
	ids := make([]int64, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// AddEdge adds a directed edge from parent to child. Both endpoints must
// already be registered.
func (d *DAG) AddEdge(parent, child int64) error {
	if !d.HasNode(parent) {
		return fmt.Errorf("node %d does not exist", parent)
	}
	if !d.HasNode(child) {
		return fmt.Errorf("node %d does not exist", child)
	}
	d.children[parent] = append(d.children[parent], child)
	d.parents[child] = append(d.parents[child], parent)
	return nil
}

// HasEdge reports whether a parent→child edge exists.
func (d *DAG) HasEdge(parent, child int64) bool {
	return slices.Contains(d.children[parent], child)
}

// DeleteEdge removes a single parent→child edge. It is an error if the
// edge does not exist.
func (d *DAG) DeleteEdge(parent, child int64) error {
	if !d.HasEdge(parent, child) {
		return fmt.Errorf("no edge from %d to %d", parent, child)
	}
	d.children[parent] = deleteFirst(d.children[parent], child)
	d.parents[child] = deleteFirst(d.parents[child], parent)
	return nil
}

// DeleteNode removes id along with all of its incident edges.
func (d *DAG) DeleteNode(id int64) error {
	if !d.HasNode(id) {
		return fmt.Errorf("node %d does not exist", id)
	}
	for _, child := range slices.Clone(d.children[id]) {
		d.parents[child] = deleteAll(d.parents[child], id)
	}
	for _, parent := range slices.Clone(d.parents[id]) {
		d.children[parent] = deleteAll(d.children[parent], id)
	}
	delete(d.children, id)
	delete(d.parents, id)
	delete(d.nodes, id)
	return nil
}

// Children returns the direct dependents of id in edge insertion order.
func (d *DAG) Children(id int64) []int64 {
	return slices.Clone(d.children[id])
}

// Parents returns the direct dependencies of id in edge insertion order.
func (d *DAG) Parents(id int64) []int64 {
	return slices.Clone(d.parents[id])
}

// TopologicalSort returns every node id ordered such that parents always
// precede their children. Ties are broken by ascending id, making the
// result deterministic for a given graph shape.
func (d *DAG) TopologicalSort() []int64 {
	indegree := make(map[int64]int, len(d.nodes))
	for id := range d.nodes {
		indegree[id] = len(d.parents[id])
	}

	var ready []int64
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	sorted := make([]int64, 0, len(d.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)

		released := make([]int64, 0, len(d.children[id]))
		seen := make(map[int64]struct{}, len(d.children[id]))
		for _, child := range d.children[id] {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			indegree[child] -= countOf(d.parents[child], id)
			if indegree[child] == 0 {
				released = append(released, child)
			}
		}
		slices.Sort(released)
		ready = mergeSorted(ready, released)
	}
	return sorted
}

func deleteFirst(s []int64, v int64) []int64 {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}

func deleteAll(s []int64, v int64) []int64 {
	return slices.DeleteFunc(s, func(x int64) bool { return x == v })
}

func countOf(s []int64, v int64) int {
	n := 0
	for _, x := range s {
		if x == v {
			n++
		}
	}
	return n
}

func mergeSorted(a, b []int64) []int64 {
	out := make([]int64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
