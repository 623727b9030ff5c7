package graph

import (
	"testing"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string, nodeType string) *models.Node {
	return &models.Node{ID: id, Type: nodeType}
}

func edge(id, source, target string) *models.Edge {
	return &models.Edge{ID: id, Source: source, Target: target}
}

func TestBuild_CoversEveryNode(t *testing.T) {
	nodes := []*models.Node{node("a", models.NodeTypeUpload), node("b", models.NodeTypeExtract)}
	edges := []*models.Edge{edge("e1", "a", "b")}

	g := Build(nodes, edges)

	assert.Len(t, g.Outgoing, 2)
	assert.Len(t, g.Incoming, 2)
	assert.Len(t, g.Outgoing["a"], 1)
	assert.Empty(t, g.Outgoing["b"])
	assert.Empty(t, g.Incoming["a"])
}

func TestSort_LinearChain(t *testing.T) {
	nodes := []*models.Node{
		node("extract", models.NodeTypeExtract),
		node("upload", models.NodeTypeUpload),
		node("notify", models.NodeTypeNotify),
	}
	edges := []*models.Edge{
		edge("e1", "upload", "extract"),
		edge("e2", "extract", "notify"),
	}

	ordered, excluded := Build(nodes, edges).Sort()

	require.Len(t, ordered, 3)
	assert.Empty(t, excluded)
	assert.Equal(t, "upload", ordered[0].ID)
	assert.Equal(t, "extract", ordered[1].ID)
	assert.Equal(t, "notify", ordered[2].ID)
}

func TestSort_DiamondKeepsInputOrderForTies(t *testing.T) {
	nodes := []*models.Node{
		node("a", models.NodeTypeUpload),
		node("b", models.NodeTypeRule),
		node("c", models.NodeTypeReview),
		node("d", models.NodeTypeNotify),
	}
	edges := []*models.Edge{
		edge("e1", "a", "b"),
		edge("e2", "a", "c"),
		edge("e3", "b", "d"),
		edge("e4", "c", "d"),
	}

	ordered, excluded := Build(nodes, edges).Sort()

	require.Len(t, ordered, 4)
	assert.Empty(t, excluded)
	assert.Equal(t, "a", ordered[0].ID)
	assert.Equal(t, "b", ordered[1].ID)
	assert.Equal(t, "c", ordered[2].ID)
	assert.Equal(t, "d", ordered[3].ID)
}

func TestSort_CycleMembersAreExcluded(t *testing.T) {
	nodes := []*models.Node{
		node("a", models.NodeTypeUpload),
		node("b", models.NodeTypeRule),
		node("c", models.NodeTypeNotify),
		node("d", models.NodeTypeCSVExport),
	}
	edges := []*models.Edge{
		edge("e1", "a", "b"),
		edge("e2", "b", "c"),
		edge("e3", "c", "b"),
		edge("e4", "c", "d"),
	}

	ordered, excluded := Build(nodes, edges).Sort()

	require.Len(t, ordered, 1)
	assert.Equal(t, "a", ordered[0].ID)
	assert.ElementsMatch(t, []string{"b", "c", "d"}, excluded)
}

func TestSort_DisconnectedNodesStillEmitted(t *testing.T) {
	nodes := []*models.Node{
		node("a", models.NodeTypeUpload),
		node("island", models.NodeTypeNotify),
	}

	ordered, excluded := Build(nodes, nil).Sort()

	assert.Len(t, ordered, 2)
	assert.Empty(t, excluded)
}
