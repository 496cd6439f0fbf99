package dag

import "errors"

// WalkOrder defines the order in which the current node and its children
// are visited.
type WalkOrder uint8

const (
	// PreOrderWalk processes the current node before visiting any of its
	// children.
	PreOrderWalk WalkOrder = iota

	// PostOrderWalk processes the current node after visiting all of its
	// children.
	PostOrderWalk
)

// WalkFunc is a function that gets invoked when walking a DAG. Walking
// stops if WalkFunc returns a non-nil error.
type WalkFunc func(id int64) error

// Walk performs a depth-first walk of outgoing edges starting at id,
// invoking the provided fn for each node. Walk returns the error returned
// by fn.
//
// Nodes unreachable from id will not be passed to fn.
func (d *DAG) Walk(id int64, fn WalkFunc, order WalkOrder) error {
	visited := make(map[int64]struct{})
	switch order {
	case PreOrderWalk:
		return d.preOrderWalk(id, fn, visited)
	case PostOrderWalk:
		return d.postOrderWalk(id, fn, visited)
	default:
		return errors.New("unsupported walk order. must be one of PreOrderWalk and PostOrderWalk")
	}
}

func (d *DAG) preOrderWalk(id int64, fn WalkFunc, visited map[int64]struct{}) error {
	if _, ok := visited[id]; ok {
		return nil
	}
	visited[id] = struct{}{}

	if err := fn(id); err != nil {
		return err
	}

	for _, child := range d.children[id] {
		if err := d.preOrderWalk(child, fn, visited); err != nil {
			return err
		}
	}
	return nil
}

func (d *DAG) postOrderWalk(id int64, fn WalkFunc, visited map[int64]struct{}) error {
	if _, ok := visited[id]; ok {
		return nil
	}
	visited[id] = struct{}{}

	for _, child := range d.children[id] {
		if err := d.postOrderWalk(child, fn, visited); err != nil {
			return err
		}
	}

	return fn(id)
}
