package graph

import (
	"testing"

	"github.com/docpipe/docpipe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handledEdge(id, source, target, handle string) *models.Edge {
	return &models.Edge{ID: id, Source: source, Target: target, SourceHandle: handle}
}

func TestSelectEdges_RulePassedRoutesTrueBranch(t *testing.T) {
	ruleNode := node("rule", models.NodeTypeRule)
	outgoing := []*models.Edge{
		handledEdge("t", "rule", "approve", HandleTrue),
		handledEdge("f", "rule", "review", HandleFalse),
	}

	selected := SelectEdges(ruleNode, models.Success("ok", map[string]any{models.DataKeyPassed: true}), outgoing)

	require.Len(t, selected, 1)
	assert.Equal(t, "t", selected[0].ID)

	selected = SelectEdges(ruleNode, models.Success("ok", map[string]any{models.DataKeyPassed: false}), outgoing)

	require.Len(t, selected, 1)
	assert.Equal(t, "f", selected[0].ID)
}

func TestSelectEdges_RuleMissingPassedRoutesFalse(t *testing.T) {
	ruleNode := node("rule", models.NodeTypeRule)
	outgoing := []*models.Edge{
		handledEdge("t", "rule", "a", HandleTrue),
		handledEdge("f", "rule", "b", HandleFalse),
	}

	selected := SelectEdges(ruleNode, models.Success("ok", nil), outgoing)

	require.Len(t, selected, 1)
	assert.Equal(t, "f", selected[0].ID)
}

func TestSelectEdges_SwitchRoutesMatchingCaseOrDefault(t *testing.T) {
	switchNode := node("switch", models.NodeTypeSwitch)
	outgoing := []*models.Edge{
		handledEdge("inv", "switch", "a", "invoice"),
		handledEdge("rec", "switch", "b", "receipt"),
		handledEdge("def", "switch", "c", HandleDefault),
	}

	selected := SelectEdges(switchNode, models.Success("ok", map[string]any{models.DataKeyBranch: "receipt"}), outgoing)

	require.Len(t, selected, 1)
	assert.Equal(t, "rec", selected[0].ID)

	selected = SelectEdges(switchNode, models.Success("ok", map[string]any{models.DataKeyBranch: "default"}), outgoing)

	require.Len(t, selected, 1)
	assert.Equal(t, "def", selected[0].ID)
}

func TestSelectEdges_FilterRoutesIncludeExclude(t *testing.T) {
	filterNode := node("filter", models.NodeTypeFilter)
	outgoing := []*models.Edge{
		handledEdge("in", "filter", "a", HandleInclude),
		handledEdge("out", "filter", "b", HandleExclude),
	}

	selected := SelectEdges(filterNode, models.Success("ok", map[string]any{models.DataKeyInclude: true}), outgoing)

	require.Len(t, selected, 1)
	assert.Equal(t, "in", selected[0].ID)
}

func TestSelectEdges_NoHandlesDeclaredActivatesAll(t *testing.T) {
	ruleNode := node("rule", models.NodeTypeRule)
	outgoing := []*models.Edge{
		edge("e1", "rule", "a"),
		edge("e2", "rule", "b"),
	}

	selected := SelectEdges(ruleNode, models.Success("ok", map[string]any{models.DataKeyPassed: false}), outgoing)

	assert.Len(t, selected, 2, "handle-less graphs degrade to pass-through")
}

func TestSelectEdges_HandlelessEdgeIsUnconditional(t *testing.T) {
	ruleNode := node("rule", models.NodeTypeRule)
	outgoing := []*models.Edge{
		handledEdge("t", "rule", "a", HandleTrue),
		edge("always", "rule", "audit"),
	}

	selected := SelectEdges(ruleNode, models.Success("ok", map[string]any{models.DataKeyPassed: false}), outgoing)

	require.Len(t, selected, 1)
	assert.Equal(t, "always", selected[0].ID)
}

func TestSelectEdges_NonBranchingNodeActivatesEverything(t *testing.T) {
	extractNode := node("extract", models.NodeTypeExtract)
	outgoing := []*models.Edge{
		handledEdge("x", "extract", "a", "whatever"),
		edge("y", "extract", "b"),
	}

	selected := SelectEdges(extractNode, models.Success("ok", nil), outgoing)

	assert.Len(t, selected, 2)
}
