package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/korvus-io/korvus/pkg/compiler/metadata"
	"github.com/korvus-io/korvus/pkg/plan/typespb"
)

func TestMetadataBindProperty(t *testing.T) {
	g := New()
	md, err := g.CreateMetadata("pod", 0)
	require.NoError(t, err)
	require.Equal(t, "pod", md.AttrName)
	require.Equal(t, "pod", md.ColName)
	require.False(t, md.HasProperty())

	h := metadata.NewHandler()
	p, err := h.Lookup("pod")
	require.NoError(t, err)

	md.BindProperty(p)
	require.True(t, md.HasProperty())
	require.Equal(t, "_attr_pod_name", md.ColName)
	require.Equal(t, typespb.String, md.DataType())
}

func TestMetadataLiteral(t *testing.T) {
	g := New()
	s, err := g.CreateString("default/checkout")
	require.NoError(t, err)
	ml, err := g.CreateMetadataLiteral(s)
	require.NoError(t, err)

	require.Equal(t, s.ID(), ml.Literal().ID())
	require.Equal(t, typespb.String, ml.DataType())

	v, err := ml.ValueProto()
	require.NoError(t, err)
	require.Equal(t, "default/checkout", v.StringValue)
}

func TestExprFitsFormat(t *testing.T) {
	g := New()
	h := metadata.NewHandler()
	p, err := h.Lookup("pod_name")
	require.NoError(t, err)

	s, err := g.CreateString("default/checkout")
	require.NoError(t, err)
	require.True(t, ExprFitsFormat(p, s))

	// MetadataLiteral wrappers are unwrapped before the check.
	ml, err := g.CreateMetadataLiteral(s)
	require.NoError(t, err)
	require.True(t, ExprFitsFormat(p, ml))

	bad, err := g.CreateString("checkout")
	require.NoError(t, err)
	require.False(t, ExprFitsFormat(p, bad))

	i, err := g.CreateInt(3)
	require.NoError(t, err)
	require.False(t, ExprFitsFormat(p, i))
}

func TestMetadataResolverAccumulatesProperties(t *testing.T) {
	lg := buildLinearGraph(t)

	require.NoError(t, lg.sink.RemoveParent(lg.m))
	resolver, err := lg.g.CreateMetadataResolver(lg.m)
	require.NoError(t, err)
	require.True(t, resolver.IsChildOf(lg.m))

	h := metadata.NewHandler()
	pod, err := h.Lookup("pod_name")
	require.NoError(t, err)

	require.False(t, resolver.HasProperty("pod_name"))
	resolver.AddProperty(pod)
	require.True(t, resolver.HasProperty("pod_name"))
	require.Len(t, resolver.Properties(), 1)
}

func TestMetadataClone(t *testing.T) {
	g := New()
	src, err := g.CreateMemorySource("http_events", nil)
	require.NoError(t, err)
	md, err := g.CreateMetadata("pod", 0)
	require.NoError(t, err)
	m, err := g.CreateMap(src, []ColumnExpression{{Name: "pod", Expr: md}}, false)
	require.NoError(t, err)
	_ = m

	h := metadata.NewHandler()
	p, err := h.Lookup("pod")
	require.NoError(t, err)
	md.BindProperty(p)

	copied, err := g.CopyNode(md)
	require.NoError(t, err)
	mdCopy := copied.(*Metadata)
	require.NotEqual(t, md.ID(), mdCopy.ID())
	require.Equal(t, "pod", mdCopy.AttrName)
	require.Equal(t, "_attr_pod_name", mdCopy.ColName)
	require.True(t, mdCopy.HasProperty())
}
