package render

import (
	"fmt"
	"sort"

	"hermes/internal/knowledge"
	"hermes/internal/problem"
)

// Snapshot builds the fixed ten-element, ordered section-data list for
// one turn on the given current node. externalFiles and permanentLogs
// are supplied by the caller (engine) rather than read from a store
// here, keeping this package free of any persistence dependency.
func Snapshot(
	current *problem.Node,
	root *problem.Node,
	parentChain []*problem.Node,
	externalFiles map[string]*problem.Artifact,
	kb []knowledge.Entry,
	permanentLogs []string,
	budgetTotal, budgetRemaining *int,
) []interface{} {
	out := make([]interface{}, len(Order))
	out[KindHeader] = HeaderData{}
	out[KindPermanentLogs] = PermanentLogsData{Lines: append([]string(nil), permanentLogs...)}
	budget := BudgetData{}
	if budgetTotal != nil {
		total := *budgetTotal
		budget.Total = &total
	}
	if budgetRemaining != nil {
		remaining := *budgetRemaining
		budget.Remaining = &remaining
	}
	out[KindBudget] = budget
	out[KindArtifacts] = BuildArtifacts(externalFiles, current)
	out[KindProblemHierarchy] = BuildProblemHierarchy(root, current)
	out[KindCriteria] = BuildCriteria(current)
	out[KindSubproblems] = BuildSubproblems(current)
	out[KindProblemPathHierarchy] = BuildProblemPathHierarchy(parentChain, current)
	out[KindKnowledgeBase] = BuildKnowledgeBase(kb)
	out[KindGoal] = GoalData{}
	return out
}

// BuildArtifacts assembles the Artifacts section data: external files
// (sorted by name) and the current node's own artifacts (sorted by
// name).
func BuildArtifacts(externalFiles map[string]*problem.Artifact, current *problem.Node) ArtifactsData {
	names := make([]string, 0, len(externalFiles))
	for name := range externalFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	external := make([]ArtifactRecord, 0, len(names))
	for _, name := range names {
		a := externalFiles[name]
		external = append(external, ArtifactRecord{
			Name:           a.Name,
			Content:        a.Content,
			IsExternal:     true,
			IsFullyVisible: true,
		})
	}

	owned := subproblemArtifacts(current)

	return ArtifactsData{External: external, Owned: owned}
}

func subproblemArtifacts(node *problem.Node) []ArtifactRecord {
	snap := node.ArtifactsSnapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ArtifactRecord, 0, len(names))
	for _, name := range names {
		a := snap[name]
		out = append(out, ArtifactRecord{
			Name:           a.Name,
			Content:        a.Content,
			IsExternal:     a.IsExternal,
			IsFullyVisible: node.IsArtifactVisible(name),
			OwnerTitle:     node.Title,
		})
	}
	return out
}

// BuildProblemHierarchy renders the whole tree rooted at root as a short
// XML-like tree, marking current's title.
func BuildProblemHierarchy(root, current *problem.Node) ProblemHierarchyData {
	if root == nil {
		return ProblemHierarchyData{}
	}
	var currentTitle string
	if current != nil {
		currentTitle = current.Title
	}
	return ProblemHierarchyData{
		TreeText:     renderHierarchyNode(root, 0),
		CurrentTitle: currentTitle,
	}
}

func renderHierarchyNode(node *problem.Node, depth int) string {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	out := fmt.Sprintf("%s<problem title=%q status=%q>\n", indent, node.Title, string(node.GetStatus()))
	for _, child := range node.Subproblems() {
		out += renderHierarchyNode(child, depth+1)
	}
	out += fmt.Sprintf("%s</problem>\n", indent)
	return out
}

// BuildCriteria assembles the Criteria section data for the current node.
func BuildCriteria(current *problem.Node) CriteriaData {
	criteria, done := current.CriteriaSnapshot()
	return CriteriaData{Criteria: criteria, CriteriaDone: done}
}

// BuildSubproblems assembles one SubproblemRecord per direct child of
// current, sorted by title for deterministic rendering.
func BuildSubproblems(current *problem.Node) SubproblemsData {
	children := current.Subproblems()
	records := make([]SubproblemRecord, 0, len(children))
	for _, child := range children {
		records = append(records, subproblemRecordFor(child))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Title < records[j].Title })
	return SubproblemsData{Items: records}
}

func subproblemRecordFor(node *problem.Node) SubproblemRecord {
	criteria, done := node.CriteriaSnapshot()
	metCount := 0
	for _, d := range done {
		if d {
			metCount++
		}
	}
	return SubproblemRecord{
		Title:          node.Title,
		Definition:     node.ProblemDefinition,
		Criteria:       criteria,
		CriteriaDone:   done,
		ArtifactsCount: len(node.ArtifactsSnapshot()),
		StatusEmoji:    problem.StatusEmoji(node.GetStatus()),
		StatusLabel:    string(node.GetStatus()),
		CriteriaStatus: fmt.Sprintf("%d/%d", metCount, len(criteria)),
	}
}

// BuildProblemPathHierarchy assembles the path from root to current,
// including, per ancestor, the sibling subproblems not on the path.
func BuildProblemPathHierarchy(parentChain []*problem.Node, current *problem.Node) ProblemPathHierarchyData {
	path := make([]PathNodeRecord, 0, len(parentChain))
	for i, node := range parentChain {
		var nextOnPath *problem.Node
		if i+1 < len(parentChain) {
			nextOnPath = parentChain[i+1]
		}

		var siblings []SubproblemRecord
		for _, child := range node.Subproblems() {
			if child == nextOnPath {
				continue
			}
			siblings = append(siblings, subproblemRecordFor(child))
		}
		sort.Slice(siblings, func(a, b int) bool { return siblings[a].Title < siblings[b].Title })

		criteria, done := node.CriteriaSnapshot()
		path = append(path, PathNodeRecord{
			Title:        node.Title,
			Definition:   node.ProblemDefinition,
			Criteria:     criteria,
			CriteriaDone: done,
			Depth:        node.DepthFromRoot,
			IsCurrent:    node == current,
			Siblings:     siblings,
		})
	}
	return ProblemPathHierarchyData{Path: path}
}

// BuildKnowledgeBase assembles the KnowledgeBase section data, newest
// entry first.
func BuildKnowledgeBase(entries []knowledge.Entry) KnowledgeBaseData {
	records := make([]KnowledgeEntryRecord, len(entries))
	for i, e := range entries {
		records[len(entries)-1-i] = KnowledgeEntryRecord{
			Content:         e.Content,
			AuthorNodeTitle: e.AuthorNodeTitle,
			Timestamp:       e.Timestamp,
			Title:           e.Title,
			Tags:            append([]string(nil), e.Tags...),
		}
	}
	return KnowledgeBaseData{Entries: records}
}
