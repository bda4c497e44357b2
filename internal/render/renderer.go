package render

import (
	"fmt"
	"strings"
)

// RendererFunc turns one section's data plus its future-changes count
// into the text block placed in the prompt. future_changes is the count
// of later turns whose AutoReply will carry a newer version of the same
// section; only the KnowledgeBase renderer consults it.
type RendererFunc func(data interface{}, futureChanges int) string

var registry = map[Kind]RendererFunc{
	KindHeader:               renderHeader,
	KindPermanentLogs:        renderPermanentLogs,
	KindBudget:               renderBudget,
	KindArtifacts:            renderArtifacts,
	KindProblemHierarchy:     renderProblemHierarchy,
	KindCriteria:             renderCriteria,
	KindSubproblems:          renderSubproblems,
	KindProblemPathHierarchy: renderProblemPathHierarchy,
	KindKnowledgeBase:        renderKnowledgeBase,
	KindGoal:                 renderGoal,
}

// Render dispatches to the registered renderer for kind.
func Render(kind Kind, data interface{}, futureChanges int) string {
	fn, ok := registry[kind]
	if !ok {
		return fmt.Sprintf("<error section=%q>no renderer registered</error>", kind)
	}
	return fn(data, futureChanges)
}

// RenderAll renders every section in fixed order, joined by blank lines.
// futureChanges maps section index to its future-changes count; a
// missing entry defaults to zero.
func RenderAll(snapshot []interface{}, futureChanges map[int]int) string {
	var sb strings.Builder
	for _, kind := range Order {
		sb.WriteString(Render(kind, snapshot[kind], futureChanges[int(kind)]))
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderHeader(interface{}, int) string {
	return "<header>\nHermes Deep Research Assistant\n</header>"
}

func renderGoal(interface{}, int) string {
	return "<goal>\nWork the current problem to completion, then focus back up.\n</goal>"
}

func renderPermanentLogs(data interface{}, _ int) string {
	d, ok := data.(PermanentLogsData)
	if !ok {
		return "<permanent_logs/>"
	}
	if len(d.Lines) == 0 {
		return "<permanent_logs>\n(empty)\n</permanent_logs>"
	}
	return "<permanent_logs>\n" + strings.Join(d.Lines, "\n") + "\n</permanent_logs>"
}

func renderBudget(data interface{}, _ int) string {
	d, ok := data.(BudgetData)
	if !ok {
		return "<budget/>"
	}
	if d.Total == nil {
		return "<budget>\nunbounded\n</budget>"
	}
	remaining := "unknown"
	if d.Remaining != nil {
		remaining = fmt.Sprintf("%d", *d.Remaining)
	}
	return fmt.Sprintf("<budget>\ntotal=%d remaining=%s\n</budget>", *d.Total, remaining)
}

func renderArtifacts(data interface{}, _ int) string {
	d, ok := data.(ArtifactsData)
	if !ok {
		return "<artifacts/>"
	}
	var sb strings.Builder
	sb.WriteString("<artifacts>\n")
	for _, a := range d.External {
		sb.WriteString(renderArtifactRecord(a))
	}
	for _, a := range d.Owned {
		sb.WriteString(renderArtifactRecord(a))
	}
	sb.WriteString("</artifacts>")
	return sb.String()
}

func renderArtifactRecord(a ArtifactRecord) string {
	content := a.Content
	if !a.IsFullyVisible && len(content) > 500 {
		content = content[:500] + "... [truncated, use open_artifact to view in full]"
	}
	owner := a.OwnerTitle
	if a.IsExternal {
		owner = "(external)"
	}
	return fmt.Sprintf("  <artifact name=%q owner=%q>\n%s\n  </artifact>\n", a.Name, owner, content)
}

func renderProblemHierarchy(data interface{}, _ int) string {
	d, ok := data.(ProblemHierarchyData)
	if !ok {
		return "<problem_hierarchy/>"
	}
	return fmt.Sprintf("<problem_hierarchy current=%q>\n%s</problem_hierarchy>", d.CurrentTitle, d.TreeText)
}

func renderCriteria(data interface{}, _ int) string {
	d, ok := data.(CriteriaData)
	if !ok {
		return "<criteria/>"
	}
	var sb strings.Builder
	sb.WriteString("<criteria>\n")
	for i, c := range d.Criteria {
		mark := " "
		if i < len(d.CriteriaDone) && d.CriteriaDone[i] {
			mark = "x"
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, mark, c)
	}
	sb.WriteString("</criteria>")
	return sb.String()
}

func renderSubproblems(data interface{}, _ int) string {
	d, ok := data.(SubproblemsData)
	if !ok {
		return "<subproblems/>"
	}
	var sb strings.Builder
	sb.WriteString("<subproblems>\n")
	for _, s := range d.Items {
		fmt.Fprintf(&sb, "  %s %s [%s] (%s, artifacts=%d)\n", s.StatusEmoji, s.Title, s.CriteriaStatus, s.StatusLabel, s.ArtifactsCount)
	}
	sb.WriteString("</subproblems>")
	return sb.String()
}

func renderProblemPathHierarchy(data interface{}, _ int) string {
	d, ok := data.(ProblemPathHierarchyData)
	if !ok {
		return "<problem_path/>"
	}
	var sb strings.Builder
	sb.WriteString("<problem_path>\n")
	for _, n := range d.Path {
		marker := ""
		if n.IsCurrent {
			marker = " (current)"
		}
		fmt.Fprintf(&sb, "  [%d] %s%s\n", n.Depth, n.Title, marker)
		for _, sib := range n.Siblings {
			fmt.Fprintf(&sb, "      - %s %s\n", sib.StatusEmoji, sib.Title)
		}
	}
	sb.WriteString("</problem_path>")
	return sb.String()
}

func renderKnowledgeBase(data interface{}, futureChanges int) string {
	if futureChanges > 0 {
		return "<knowledge_base>\n[Knowledge Base content omitted as it was updated later in the conversation.]\n</knowledge_base>"
	}
	d, ok := data.(KnowledgeBaseData)
	if !ok {
		return "<knowledge_base/>"
	}
	var sb strings.Builder
	sb.WriteString("<knowledge_base>\n")
	for _, e := range d.Entries {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&sb, "  <entry title=%q author=%q timestamp=%q tags=%q>\n%s\n  </entry>\n",
			title, e.AuthorNodeTitle, e.Timestamp, strings.Join(e.Tags, ","), e.Content)
	}
	sb.WriteString("</knowledge_base>")
	return sb.String()
}
