package ir

import (
	"fmt"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
)

// TabletSourceGroup stands in for one memory source fanned out across
// tablets during distributed planning. A placement pass replaces it with
// one tablet-pinned MemorySource per tablet unioned back together, so it
// never lowers.
type TabletSourceGroup struct {
	baseOperator

	// TabletKey is the relation column the table is sharded on.
	TabletKey string
	Tablets   []string

	memorySourceID int64
}

var _ Operator = (*TabletSourceGroup)(nil)

// Init wraps the given memory source with the tablets it spans.
func (t *TabletSourceGroup) Init(source *MemorySource, tablets []string, tabletKey string) error {
	t.memorySourceID = source.ID()
	t.Tablets = tablets
	t.TabletKey = tabletKey
	if source.RelationResolved() {
		t.SetRelation(source.Relation())
	}
	return t.graph.addEdgeByID(t.id, source.ID())
}

func (t *TabletSourceGroup) DebugString() string {
	return fmt.Sprintf("TabletSourceGroup(id=%d, tablets=%d)", t.id, len(t.Tablets))
}

// ReplacedMemorySource returns the wrapped memory source.
func (t *TabletSourceGroup) ReplacedMemorySource() *MemorySource {
	src, ok := t.graph.Get(t.memorySourceID).(*MemorySource)
	if !ok {
		panic(fmt.Sprintf("ir: memory source %d of tablet group %d is missing", t.memorySourceID, t.id))
	}
	return src
}

func (t *TabletSourceGroup) ToProto() (*planpb.Operator, error) {
	return nil, unimplementedError(t, "tablet source groups must be expanded before lowering")
}

// Tablet groups exist only between tablet placement and expansion, and
// no pass clones a graph in that window.
func (t *TabletSourceGroup) copyFrom(src Node, _ copyMap) error {
	return unimplementedError(t, "tablet source groups cannot be copied")
}
