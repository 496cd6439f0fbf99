package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/korvus-io/korvus/pkg/plan/planpb"
	"github.com/korvus-io/korvus/pkg/plan/typespb"
	"github.com/korvus-io/korvus/pkg/plan/udfpb"
	"github.com/korvus-io/korvus/pkg/table/schema"
)

func TestToProtoLinearPlan(t *testing.T) {
	lg := buildLinearGraph(t)
	lg.resolve()

	plan, err := lg.g.ToProto()
	require.NoError(t, err)

	require.Equal(t, lg.g.QueryID().String(), plan.QueryID)
	require.Len(t, plan.Fragments, 1)
	require.Len(t, plan.DAG.Nodes, 1)
	require.Equal(t, int64(1), plan.DAG.Nodes[0].ID)

	frag := plan.Fragments[0]
	require.Equal(t, int64(1), frag.ID)
	require.Len(t, frag.Nodes, 3)

	// Operators appear in topological order: source, map, sink.
	require.Equal(t, lg.src.ID(), frag.Nodes[0].ID)
	require.Equal(t, planpb.MemorySourceOperatorType, frag.Nodes[0].Op.OpType)
	require.Equal(t, lg.m.ID(), frag.Nodes[1].ID)
	require.Equal(t, planpb.MapOperatorType, frag.Nodes[1].Op.OpType)
	require.Equal(t, lg.sink.ID(), frag.Nodes[2].ID)
	require.Equal(t, planpb.MemorySinkOperatorType, frag.Nodes[2].Op.OpType)

	srcOp := frag.Nodes[0].Op.MemSourceOp
	require.Equal(t, "http_events", srcOp.Name)
	require.Equal(t, []int64{0, 1}, srcOp.ColumnIdxs)
	require.Equal(t, []string{"latency", "service"}, srcOp.ColumnNames)
	require.Equal(t, []typespb.DataType{typespb.Float64, typespb.String}, srcOp.ColumnTypes)
	require.Nil(t, srcOp.StartTime)

	mapOp := frag.Nodes[1].Op.MapOp
	require.Equal(t, []string{"x"}, mapOp.ColumnNames)
	require.Len(t, mapOp.Expressions, 1)
	fn := mapOp.Expressions[0].Func
	require.NotNil(t, fn)
	require.Equal(t, "pl.add", fn.Name)
	require.Len(t, fn.Args, 2)
	require.Equal(t, lg.src.ID(), fn.Args[0].Column.Node)
	require.Equal(t, int64(1), fn.Args[1].Value.Int64Value)
	require.Equal(t, []typespb.DataType{typespb.Float64, typespb.Int64}, fn.ArgsDataTypes)

	sinkOp := frag.Nodes[2].Op.MemSinkOp
	require.Equal(t, "out", sinkOp.Name)
	require.Equal(t, []string{"x"}, sinkOp.ColumnNames)

	// The fragment DAG carries operator adjacency with sorted lists.
	require.Len(t, frag.DAG.Nodes, 3)
	require.Equal(t, []int64{lg.m.ID()}, frag.DAG.Nodes[0].SortedChildren)
	require.Empty(t, frag.DAG.Nodes[0].SortedParents)
	require.Equal(t, []int64{lg.sink.ID()}, frag.DAG.Nodes[1].SortedChildren)
	require.Equal(t, []int64{lg.src.ID()}, frag.DAG.Nodes[1].SortedParents)
	require.Empty(t, frag.DAG.Nodes[2].SortedChildren)
}

func TestToProtoPanicsOnUnresolvedRelation(t *testing.T) {
	g := New()
	src, err := g.CreateMemorySource("t", nil)
	require.NoError(t, err)
	src.SetColumnIndexMap(nil)

	require.Panics(t, func() { _, _ = g.ToProto() })
}

func TestMemorySourceTimeAndTablet(t *testing.T) {
	lg := buildLinearGraph(t)
	lg.src.SetTimeValues(10, 20)
	lg.src.SetTabletValue("tablet-1")

	pb, err := lg.src.ToProto()
	require.NoError(t, err)
	op := pb.MemSourceOp
	require.Equal(t, int64(10), op.StartTime.Value)
	require.Equal(t, int64(20), op.StopTime.Value)
	require.Equal(t, "tablet-1", op.Tablet)
}

func TestFilterToProto(t *testing.T) {
	lg := buildLinearGraph(t)

	col, err := lg.g.CreateColumn("x", 0)
	require.NoError(t, err)
	threshold, err := lg.g.CreateFloat(1.5)
	require.NoError(t, err)
	pred, err := lg.g.CreateOpFunc(OpMap[">"], []Expression{col, threshold})
	require.NoError(t, err)
	pred.SetDataType(typespb.Boolean)
	pred.SetFuncID(0)

	require.NoError(t, lg.sink.RemoveParent(lg.m))
	filter, err := lg.g.CreateFilter(lg.m, pred)
	require.NoError(t, err)
	filter.SetRelation(lg.m.Relation())
	col.ResolveColumn(0, typespb.Float64)

	pb, err := filter.ToProto()
	require.NoError(t, err)
	op := pb.FilterOp
	require.NotNil(t, op.Expression.Func)
	require.Len(t, op.Columns, 1)
	require.Equal(t, lg.m.ID(), op.Columns[0].Node)
	require.Equal(t, int64(0), op.Columns[0].Index)
}

func TestFilterRejectsNonBooleanPredicate(t *testing.T) {
	lg := buildLinearGraph(t)
	lg.resolve()

	require.NoError(t, lg.sink.RemoveParent(lg.m))
	filter, err := lg.g.CreateFilter(lg.m, lg.fn)
	require.NoError(t, err)
	filter.SetRelation(lg.m.Relation())

	_, err = filter.ToProto()
	require.ErrorContains(t, err, "filter predicate must be boolean")
}

func TestLimitToProto(t *testing.T) {
	lg := buildLinearGraph(t)

	require.NoError(t, lg.sink.RemoveParent(lg.m))
	limit, err := lg.g.CreateLimit(lg.m, 100)
	require.NoError(t, err)
	limit.SetRelation(lg.m.Relation())

	pb, err := limit.ToProto()
	require.NoError(t, err)
	require.Equal(t, int64(100), pb.LimitOp.Limit)
	require.Len(t, pb.LimitOp.Columns, 1)

	_, err = lg.g.CreateLimit(lg.m, -1)
	require.ErrorContains(t, err, "limit must be non-negative")
}

func TestUnionSetRelationFromParents(t *testing.T) {
	lg := buildLinearGraph(t)

	src2, err := lg.g.CreateMemorySource("http_events_2", nil)
	require.NoError(t, err)

	u, err := lg.g.CreateUnion([]Operator{lg.src, src2})
	require.NoError(t, err)

	// Second parent has no relation yet.
	require.ErrorContains(t, u.SetRelationFromParents(), "no resolved relation")

	mismatched, err := schema.NewRelation([]string{"other"}, []typespb.DataType{typespb.Int64})
	require.NoError(t, err)
	src2.SetRelation(mismatched)
	require.ErrorContains(t, u.SetRelationFromParents(), "disagree on relations")

	src2.SetRelation(lg.src.Relation())
	require.NoError(t, u.SetRelationFromParents())
	require.True(t, u.Relation().Equal(lg.src.Relation()))
}

func TestMemorySourceTimeExpressions(t *testing.T) {
	lg := buildLinearGraph(t)

	start, err := lg.g.CreateString("-5m")
	require.NoError(t, err)
	stop, err := lg.g.CreateTime(1000)
	require.NoError(t, err)

	require.False(t, lg.src.TimeExpressionsSet())
	require.NoError(t, lg.src.SetTimeExpressions(start, stop))
	require.True(t, lg.src.TimeExpressionsSet())

	gotStart, gotStop := lg.src.TimeExpressions()
	require.Equal(t, start.ID(), gotStart.ID())
	require.Equal(t, stop.ID(), gotStop.ID())

	// Copies carry the expressions along.
	copied, err := lg.g.CopyNode(lg.src)
	require.NoError(t, err)
	srcCopy := copied.(*MemorySource)
	require.True(t, srcCopy.TimeExpressionsSet())
	copyStart, _ := srcCopy.TimeExpressions()
	require.NotEqual(t, start.ID(), copyStart.ID())
	require.Equal(t, "-5m", copyStart.(*String).Value)
}

func TestGRPCSourceGroupRejectsMismatchedSink(t *testing.T) {
	lg := buildLinearGraph(t)

	require.NoError(t, lg.sink.RemoveParent(lg.m))
	grpcSink, err := lg.g.CreateGRPCSink(lg.m, 0)
	require.NoError(t, err)
	grpcSink.SetRelation(lg.m.Relation())

	remote := New()
	otherRel, err := schema.NewRelation([]string{"y"}, []typespb.DataType{typespb.Int64})
	require.NoError(t, err)
	group, err := remote.CreateGRPCSourceGroup(9, otherRel)
	require.NoError(t, err)

	require.ErrorContains(t, group.AddGRPCSink(grpcSink), "does not match source group relation")
	require.Empty(t, group.DependentSinkIDs())
}

func TestUnionRequiresColumnMappings(t *testing.T) {
	lg := buildLinearGraph(t)

	src2, err := lg.g.CreateMemorySource("http_events_2", nil)
	require.NoError(t, err)
	src2.SetRelation(lg.src.Relation())

	u, err := lg.g.CreateUnion([]Operator{lg.src, src2})
	require.NoError(t, err)
	u.SetRelation(lg.src.Relation())

	_, err = u.ToProto()
	require.ErrorContains(t, err, "union has 0 column mappings for 2 parents")

	require.Error(t, u.SetColumnMappings([][]int64{{0, 1}}))
	require.NoError(t, u.SetColumnMappings([][]int64{{0, 1}, {1, 0}}))
	require.True(t, u.HasColumnMappings())

	pb, err := u.ToProto()
	require.NoError(t, err)
	require.Equal(t, []string{"latency", "service"}, pb.UnionOp.ColumnNames)
	require.Len(t, pb.UnionOp.ColumnMappings, 2)
	require.Equal(t, []int64{1, 0}, pb.UnionOp.ColumnMappings[1].ColumnIndexes)
}

func TestJoinToProto(t *testing.T) {
	lg := buildLinearGraph(t)

	right, err := lg.g.CreateMemorySource("services", []string{"service", "owner"})
	require.NoError(t, err)
	rightRel, err := schema.NewRelation(
		[]string{"service", "owner"},
		[]typespb.DataType{typespb.String, typespb.String},
	)
	require.NoError(t, err)
	right.SetRelation(rightRel)

	leftOn, err := lg.g.CreateColumn("service", 0)
	require.NoError(t, err)
	rightOn, err := lg.g.CreateColumn("service", 1)
	require.NoError(t, err)

	j, err := lg.g.CreateJoin(lg.src, right, "inner", []*Column{leftOn}, []*Column{rightOn}, []string{"", "_right"})
	require.NoError(t, err)
	require.Equal(t, planpb.JoinTypeInner, j.JoinKind)
	require.False(t, j.SpecifiedAsRight)

	outLat, err := lg.g.CreateColumn("latency", 0)
	require.NoError(t, err)
	outOwner, err := lg.g.CreateColumn("owner", 1)
	require.NoError(t, err)
	require.NoError(t, j.SetOutputColumns([]string{"latency", "owner"}, []*Column{outLat, outOwner}))

	outRel, err := schema.NewRelation(
		[]string{"latency", "owner"},
		[]typespb.DataType{typespb.Float64, typespb.String},
	)
	require.NoError(t, err)
	j.SetRelation(outRel)

	leftOn.ResolveColumn(1, typespb.String)
	rightOn.ResolveColumn(0, typespb.String)
	outLat.ResolveColumn(0, typespb.Float64)
	outOwner.ResolveColumn(1, typespb.String)

	pb, err := j.ToProto()
	require.NoError(t, err)
	op := pb.JoinOp
	require.Equal(t, planpb.JoinTypeInner, op.Type)
	require.Len(t, op.EqualityConditions, 1)
	require.Equal(t, int64(1), op.EqualityConditions[0].LeftColumnIndex)
	require.Equal(t, int64(0), op.EqualityConditions[0].RightColumnIndex)
	require.Equal(t, []string{"latency", "owner"}, op.ColumnNames)
	require.Len(t, op.OutputColumns, 2)
	require.Equal(t, int64(0), op.OutputColumns[0].ParentIndex)
	require.Equal(t, int64(1), op.OutputColumns[1].ParentIndex)
}

func TestJoinTypeFromString(t *testing.T) {
	for _, tt := range []struct {
		how     string
		want    planpb.JoinType
		asRight bool
		wantErr string
	}{
		{how: "inner", want: planpb.JoinTypeInner},
		{how: "left", want: planpb.JoinTypeLeftOuter},
		{how: "right", want: planpb.JoinTypeLeftOuter, asRight: true},
		{how: "outer", want: planpb.JoinTypeFullOuter},
		{how: "full_outer", want: planpb.JoinTypeFullOuter},
		{how: "cross", wantErr: `unknown join type "cross"`},
	} {
		t.Run(tt.how, func(t *testing.T) {
			kind, asRight, err := joinTypeFromString(tt.how)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, kind)
			require.Equal(t, tt.asRight, asRight)
		})
	}
}

func TestGRPCSinkAndSourceGroupPairing(t *testing.T) {
	lg := buildLinearGraph(t)

	require.NoError(t, lg.sink.RemoveParent(lg.m))
	grpcSink, err := lg.g.CreateGRPCSink(lg.m, 0)
	require.NoError(t, err)
	grpcSink.SetRelation(lg.m.Relation())

	// The receiving fragment lives in its own graph; pairing is by id.
	remote := New()
	group, err := remote.CreateGRPCSourceGroup(42, lg.m.Relation())
	require.NoError(t, err)
	require.NoError(t, group.AddGRPCSink(grpcSink))
	require.Equal(t, int64(42), grpcSink.DestinationID)
	require.Equal(t, []int64{grpcSink.ID()}, group.DependentSinkIDs())

	// Lowering the sink needs a placement address.
	_, err = grpcSink.ToProto()
	require.ErrorContains(t, err, "no destination address")

	grpcSink.SetDestinationAddress("10.0.0.1:50300")
	pb, err := grpcSink.ToProto()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:50300", pb.GRPCSinkOp.Address)
	require.Equal(t, int64(42), pb.GRPCSinkOp.DestinationID)

	// The group lowers as a plain GRPC source.
	groupPB, err := group.ToProto()
	require.NoError(t, err)
	require.Equal(t, planpb.GRPCSourceOperatorType, groupPB.OpType)
	require.Equal(t, int64(42), groupPB.GRPCSourceOp.SourceID)
	require.Equal(t, []string{"x"}, groupPB.GRPCSourceOp.ColumnNames)
}

func TestGRPCSourceToProto(t *testing.T) {
	g := New()
	rel, err := schema.NewRelation([]string{"x"}, []typespb.DataType{typespb.Float64})
	require.NoError(t, err)
	src, err := g.CreateGRPCSource(7, rel)
	require.NoError(t, err)

	pb, err := src.ToProto()
	require.NoError(t, err)
	require.Equal(t, int64(7), pb.GRPCSourceOp.SourceID)
	require.Equal(t, []typespb.DataType{typespb.Float64}, pb.GRPCSourceOp.ColumnTypes)
}

func TestUDTFSourceToProto(t *testing.T) {
	g := New()
	spec := udfpb.UDTFSourceSpec{
		Name: "GetAgentStatus",
		Args: []udfpb.UDTFArg{{Name: "agent_id", ArgType: typespb.String}},
		Relation: []udfpb.RelationColumn{
			{Name: "agent_id", Type: typespb.String},
			{Name: "healthy", Type: typespb.Boolean},
		},
	}

	arg, err := g.CreateString("agent-1")
	require.NoError(t, err)
	u, err := g.CreateUDTFSource(spec, []Datum{arg})
	require.NoError(t, err)
	require.True(t, u.RelationResolved())

	pb, err := u.ToProto()
	require.NoError(t, err)
	op := pb.UDTFSourceOp
	require.Equal(t, "GetAgentStatus", op.Name)
	require.Equal(t, []string{"agent_id", "healthy"}, op.ColumnNames)
	require.Len(t, op.ArgValues, 1)
	require.Equal(t, "agent-1", op.ArgValues[0].StringValue)
}

func TestUDTFSourceValidatesArgs(t *testing.T) {
	g := New()
	spec := udfpb.UDTFSourceSpec{
		Name: "GetAgentStatus",
		Args: []udfpb.UDTFArg{{Name: "agent_id", ArgType: typespb.String}},
	}

	_, err := g.CreateUDTFSource(spec, nil)
	require.ErrorContains(t, err, "expects 1 arguments, got 0")

	wrong, err := g.CreateInt(3)
	require.NoError(t, err)
	_, err = g.CreateUDTFSource(spec, []Datum{wrong})
	require.ErrorContains(t, err, `argument "agent_id" expects STRING, got INT64`)
}

func TestBlockingAggToProto(t *testing.T) {
	lg := buildLinearGraph(t)

	group, err := lg.g.CreateColumn("service", 0)
	require.NoError(t, err)
	argCol, err := lg.g.CreateColumn("latency", 0)
	require.NoError(t, err)
	mean, err := lg.g.CreateFunc("mean", []Expression{argCol})
	require.NoError(t, err)
	mean.SetFuncID(3)

	require.NoError(t, lg.m.RemoveParent(lg.src))
	agg, err := lg.g.CreateBlockingAgg(lg.src, []*Column{group}, []ColumnExpression{{Name: "mean_latency", Expr: mean}})
	require.NoError(t, err)
	aggRel, err := schema.NewRelation(
		[]string{"service", "mean_latency"},
		[]typespb.DataType{typespb.String, typespb.Float64},
	)
	require.NoError(t, err)
	agg.SetRelation(aggRel)

	group.ResolveColumn(1, typespb.String)
	argCol.ResolveColumn(0, typespb.Float64)

	pb, err := agg.ToProto()
	require.NoError(t, err)
	op := pb.AggOp
	require.False(t, op.Windowed)
	require.Equal(t, []string{"mean_latency"}, op.ValueNames)
	require.Equal(t, []string{"service"}, op.GroupNames)
	require.Len(t, op.Values, 1)
	require.Equal(t, "pl.mean", op.Values[0].Name)
	require.Equal(t, int64(3), op.Values[0].ID)
	require.Len(t, op.Values[0].Args, 1)
	require.Equal(t, lg.src.ID(), op.Values[0].Args[0].Column.Node)
	require.Len(t, op.Groups, 1)
	require.Equal(t, int64(1), op.Groups[0].Index)
}

func TestBlockingAggRejectsNonFuncValues(t *testing.T) {
	lg := buildLinearGraph(t)

	lit, err := lg.g.CreateInt(1)
	require.NoError(t, err)
	require.NoError(t, lg.m.RemoveParent(lg.src))
	_, err = lg.g.CreateBlockingAgg(lg.src, nil, []ColumnExpression{{Name: "v", Expr: lit}})
	require.ErrorContains(t, err, "must be a function call")
}

func TestScaffoldKindsDoNotLower(t *testing.T) {
	lg := buildLinearGraph(t)

	drop, err := lg.g.CreateDrop(lg.m, []string{"x"})
	require.NoError(t, err)
	groupBy, err := lg.g.CreateGroupBy(lg.m, nil)
	require.NoError(t, err)
	resolver, err := lg.g.CreateMetadataResolver(lg.m)
	require.NoError(t, err)
	tablets, err := lg.g.CreateTabletSourceGroup(lg.src, []string{"a", "b"}, "upid")
	require.NoError(t, err)
	list, err := lg.g.CreateList(nil)
	require.NoError(t, err)
	tuple, err := lg.g.CreateTuple(nil)
	require.NoError(t, err)

	for _, tt := range []struct {
		name string
		fn   func() error
	}{
		{"drop", func() error { _, err := drop.ToProto(); return err }},
		{"group by", func() error { _, err := groupBy.ToProto(); return err }},
		{"metadata resolver", func() error { _, err := resolver.ToProto(); return err }},
		{"tablet source group", func() error { _, err := tablets.ToProto(); return err }},
		{"list", func() error { _, err := list.ToProto(); return err }},
		{"tuple", func() error { _, err := tuple.ToProto(); return err }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.fn(), ErrUnimplemented)
		})
	}
}

func TestLiteralValueProtos(t *testing.T) {
	g := New()

	s, err := g.CreateString("hello")
	require.NoError(t, err)
	i, err := g.CreateInt(-7)
	require.NoError(t, err)
	f, err := g.CreateFloat(2.5)
	require.NoError(t, err)
	b, err := g.CreateBool(true)
	require.NoError(t, err)
	tm, err := g.CreateTime(1234)
	require.NoError(t, err)
	u, err := g.CreateUInt128(1, 2)
	require.NoError(t, err)

	for _, tt := range []struct {
		name  string
		datum Datum
		typ   typespb.DataType
		check func(t *testing.T, v *planpb.ScalarValue)
	}{
		{"string", s, typespb.String, func(t *testing.T, v *planpb.ScalarValue) {
			require.Equal(t, "hello", v.StringValue)
		}},
		{"int", i, typespb.Int64, func(t *testing.T, v *planpb.ScalarValue) {
			require.Equal(t, int64(-7), v.Int64Value)
		}},
		{"float", f, typespb.Float64, func(t *testing.T, v *planpb.ScalarValue) {
			require.Equal(t, 2.5, v.Float64Value)
		}},
		{"bool", b, typespb.Boolean, func(t *testing.T, v *planpb.ScalarValue) {
			require.True(t, v.BoolValue)
		}},
		{"time", tm, typespb.Time64NS, func(t *testing.T, v *planpb.ScalarValue) {
			require.Equal(t, int64(1234), v.Time64NSValue)
		}},
		{"uint128", u, typespb.UInt128, func(t *testing.T, v *planpb.ScalarValue) {
			require.Equal(t, uint64(1), v.UInt128Value.High)
			require.Equal(t, uint64(2), v.UInt128Value.Low)
		}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.datum.ValueProto()
			require.NoError(t, err)
			require.Equal(t, tt.typ, v.DataType)
			tt.check(t, v)

			// The expression form wraps the same value.
			expr, err := tt.datum.ToProto()
			require.NoError(t, err)
			require.Equal(t, v, expr.Value)
		})
	}
}
