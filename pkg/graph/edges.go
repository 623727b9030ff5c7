package graph

import "github.com/docpipe/docpipe/pkg/models"

// Output handle labels used by branching node types.
const (
	HandleTrue    = "true"
	HandleFalse   = "false"
	HandleInclude = "include"
	HandleExclude = "exclude"
	HandleDefault = "default"
)

// SelectEdges decides which of a node's outgoing edges a successful step
// result activates. Rule nodes route on data.passed, switch nodes on
// data.branch, filter nodes on data.include; every other node type
// activates all outgoing edges unconditionally.
func SelectEdges(node *models.Node, result *models.StepResult, outgoing []*models.Edge) []*models.Edge {
	switch node.Type {
	case models.NodeTypeRule:
		return matchHandle(outgoing, boolHandle(result, models.DataKeyPassed, HandleTrue, HandleFalse))
	case models.NodeTypeSwitch:
		branch := HandleDefault
		if b, ok := result.Data[models.DataKeyBranch].(string); ok && b != "" {
			branch = b
		}

		return matchHandle(outgoing, branch)
	case models.NodeTypeFilter:
		return matchHandle(outgoing, boolHandle(result, models.DataKeyInclude, HandleInclude, HandleExclude))
	default:
		return outgoing
	}
}

func boolHandle(result *models.StepResult, key, whenTrue, whenFalse string) string {
	if v, ok := result.Data[key].(bool); ok && v {
		return whenTrue
	}

	return whenFalse
}

// matchHandle keeps the edges whose handle equals the computed branch, plus
// handle-less edges, which are unconditional. When none of the node's edges
// declare a handle at all, every edge activates regardless of the branch
// value, so an unwired builder graph degrades to pass-through instead of
// silently dead-ending the workflow.
func matchHandle(edges []*models.Edge, handle string) []*models.Edge {
	anyHandled := false

	for _, edge := range edges {
		if edge.SourceHandle != "" {
			anyHandled = true

			break
		}
	}

	if !anyHandled {
		return edges
	}

	selected := make([]*models.Edge, 0, len(edges))

	for _, edge := range edges {
		if edge.SourceHandle == "" || edge.SourceHandle == handle {
			selected = append(selected, edge)
		}
	}

	return selected
}
