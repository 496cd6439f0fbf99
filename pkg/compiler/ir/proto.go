package ir

import (
	"fmt"
	"sort"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// singleFragmentID is the fragment id used before distributed planning
// splits the plan.
const singleFragmentID int64 = 1

// ToProto lowers the graph into the physical-plan wire format as a
// single fragment. Every operator must have a resolved relation by the
// time lowering runs; an unresolved one is a bug in an earlier pass, not
// a user error.
func (g *IR) ToProto() (*planpb.Plan, error) {
	frag := &planpb.PlanFragment{ID: singleFragmentID, DAG: &planpb.DAG{}}
	for _, op := range g.TopoOperators() {
		if !op.RelationResolved() {
			panic(fmt.Sprintf("ir: lowering operator %d (%s) with unresolved relation", op.ID(), op.Kind()))
		}
		pb, err := op.ToProto()
		if err != nil {
			return nil, err
		}
		frag.Nodes = append(frag.Nodes, &planpb.PlanNode{ID: op.ID(), Op: pb})
		frag.DAG.Nodes = append(frag.DAG.Nodes, operatorDAGNode(op))
	}

	return &planpb.Plan{
		QueryID: g.queryID.String(),
		DAG: &planpb.DAG{
			Nodes: []*planpb.DAGNode{{ID: singleFragmentID}},
		},
		Fragments: []*planpb.PlanFragment{frag},
	}, nil
}

// operatorDAGNode encodes an operator's operator-level neighbors with
// both lists sorted, so a given graph always encodes identically.
func operatorDAGNode(op Operator) *planpb.DAGNode {
	node := &planpb.DAGNode{ID: op.ID()}
	for _, child := range op.Children() {
		node.SortedChildren = append(node.SortedChildren, child.ID())
	}
	for _, parent := range op.Parents() {
		node.SortedParents = append(node.SortedParents, parent.ID())
	}
	sort.Slice(node.SortedChildren, func(i, j int) bool { return node.SortedChildren[i] < node.SortedChildren[j] })
	sort.Slice(node.SortedParents, func(i, j int) bool { return node.SortedParents[i] < node.SortedParents[j] })
	return node
}
