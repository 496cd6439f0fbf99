package ir

// CopyNode copies src into this graph, recursively copying the
// expressions it owns. Copying from another graph preserves node ids so
// cross-graph references (sink destinations, fragment wiring) stay valid;
// copying within the same graph allocates fresh ids. Operator parents are
// never copied; see Clone for whole-graph duplication.
func (g *IR) CopyNode(src Node) (Node, error) {
	return g.copyNode(src, copyMap{})
}

// copyNode is CopyNode with an explicit memo, shared across one top-level
// clone so a subgraph referenced twice is copied exactly once. The memo
// entry is recorded before kind-specific state is copied, which keeps
// reference cycles through the memo from recursing forever.
func (g *IR) copyNode(src Node, copied copyMap) (Node, error) {
	if dst, ok := copied[src]; ok {
		return dst, nil
	}
	dst := newNodeOfKind(src.Kind())
	if src.Graph() != g {
		g.registerWithID(dst, src.Kind(), src.ID())
	} else {
		g.register(dst, src.Kind())
	}
	copied[src] = dst
	if err := dst.copyFrom(src, copied); err != nil {
		return nil, err
	}
	return dst, nil
}

// Clone duplicates the whole graph: every node is copied under its
// original id, then operator parent lists are rebuilt so the new graph's
// structure matches the old one without sharing any state.
func (g *IR) Clone() (*IR, error) {
	out := New(WithQueryID(g.queryID), WithLogger(g.logger))
	copied := copyMap{}

	order := g.dag.TopologicalSort()
	for _, id := range order {
		if _, err := out.copyNode(g.Get(id), copied); err != nil {
			return nil, err
		}
	}
	for _, id := range order {
		src, ok := g.Get(id).(Operator)
		if !ok {
			continue
		}
		dst := out.Get(id).(Operator)
		if err := dst.CopyParentsFrom(src); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// OptionallyCloneWithEdge attaches child beneath parent, cloning the
// child first if parent already holds it. Attaching the same expression
// twice therefore yields two distinct children.
func (g *IR) OptionallyCloneWithEdge(parent, child Node) (Node, error) {
	if g.HasEdge(parent, child) {
		clone, err := g.CopyNode(child)
		if err != nil {
			return nil, err
		}
		if err := g.AddEdge(parent, clone); err != nil {
			return nil, err
		}
		return clone, nil
	}
	if err := g.AddEdge(parent, child); err != nil {
		return nil, err
	}
	return child, nil
}
