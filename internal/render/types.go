// Package render turns a per-turn snapshot of ten fixed "dynamic
// sections" into the text block the engine sends to the LLM, and detects
// which sections changed since the prior turn so only deltas are
// reported in full. Data types here are frozen and value-equal: every
// field is a primitive, a slice of primitives, or a pointer to a private
// copy of a primitive, never a live pointer into mutable engine or tree
// state, so two snapshots can be compared with
// plain value equality (see internal/chat's use of go-cmp).
package render

// Kind identifies one of the ten fixed section slots, in fixed order.
type Kind int

const (
	KindHeader Kind = iota
	KindPermanentLogs
	KindBudget
	KindArtifacts
	KindProblemHierarchy
	KindCriteria
	KindSubproblems
	KindProblemPathHierarchy
	KindKnowledgeBase
	KindGoal

	numKinds
)

// Order is the fixed rendering order of all ten section kinds.
var Order = []Kind{
	KindHeader,
	KindPermanentLogs,
	KindBudget,
	KindArtifacts,
	KindProblemHierarchy,
	KindCriteria,
	KindSubproblems,
	KindProblemPathHierarchy,
	KindKnowledgeBase,
	KindGoal,
}

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "Header"
	case KindPermanentLogs:
		return "PermanentLogs"
	case KindBudget:
		return "Budget"
	case KindArtifacts:
		return "Artifacts"
	case KindProblemHierarchy:
		return "ProblemHierarchy"
	case KindCriteria:
		return "Criteria"
	case KindSubproblems:
		return "Subproblems"
	case KindProblemPathHierarchy:
		return "ProblemPathHierarchy"
	case KindKnowledgeBase:
		return "KnowledgeBase"
	case KindGoal:
		return "Goal"
	default:
		return "Unknown"
	}
}

// HeaderData is the Header section's data: static, carries nothing.
type HeaderData struct{}

// GoalData is the Goal section's data: static, carries nothing.
type GoalData struct{}

// PermanentLogsData backs the PermanentLogs section.
type PermanentLogsData struct {
	Lines []string
}

// BudgetData backs the Budget section. Nil pointers mean "no budget
// configured" rather than zero.
type BudgetData struct {
	Total     *int
	Remaining *int
}

// ArtifactRecord is the frozen, value-equal view of one artifact.
type ArtifactRecord struct {
	Name           string
	Content        string
	IsExternal     bool
	IsFullyVisible bool
	OwnerTitle     string
}

// ArtifactsData backs the Artifacts section: external files shared
// across the tree, and the current node's own artifacts.
type ArtifactsData struct {
	External []ArtifactRecord
	Owned    []ArtifactRecord
}

// ProblemHierarchyData backs the ProblemHierarchy section: a
// pre-rendered short tree plus the node currently in focus.
type ProblemHierarchyData struct {
	TreeText     string
	CurrentTitle string
}

// CriteriaData backs the Criteria section.
type CriteriaData struct {
	Criteria     []string
	CriteriaDone []bool
}

// SubproblemRecord is the frozen, value-equal summary of one subproblem.
type SubproblemRecord struct {
	Title          string
	Definition     string
	Criteria       []string
	CriteriaDone   []bool
	ArtifactsCount int
	StatusEmoji    string
	StatusLabel    string
	CriteriaStatus string
}

// SubproblemsData backs the Subproblems section.
type SubproblemsData struct {
	Items []SubproblemRecord
}

// PathNodeRecord is one ancestor in the current path, including the
// sibling subproblems that are not themselves on the path.
type PathNodeRecord struct {
	Title        string
	Definition   string
	Criteria     []string
	CriteriaDone []bool
	Depth        int
	IsCurrent    bool
	Siblings     []SubproblemRecord
}

// ProblemPathHierarchyData backs the ProblemPathHierarchy section.
type ProblemPathHierarchyData struct {
	Path []PathNodeRecord
}

// KnowledgeEntryRecord is the frozen, value-equal view of one knowledge
// base entry.
type KnowledgeEntryRecord struct {
	Content         string
	AuthorNodeTitle string
	Timestamp       string
	Title           string
	Tags            []string
}

// KnowledgeBaseData backs the KnowledgeBase section.
type KnowledgeBaseData struct {
	Entries []KnowledgeEntryRecord
}
