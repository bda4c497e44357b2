// Package problem holds the in-memory problem tree: the hierarchy of
// research nodes the engine works through. The tree is pure in-memory —
// it emits no events and exposes no persistence of its own; internal/store
// projects it to disk and reloads it on demand.
package problem

import (
	"fmt"
	"sync"
)

// Status is the lifecycle state of a node.
type Status string

const (
	StatusNotStarted Status = "/not_started"
	StatusPending    Status = "/pending"
	StatusInProgress Status = "/in_progress"
	StatusFinished   Status = "/finished"
	StatusFailed     Status = "/failed"
	StatusCancelled  Status = "/cancelled"
)

// StatusEmoji renders the short glyph used in tree summaries.
func StatusEmoji(s Status) string {
	switch s {
	case StatusNotStarted:
		return "⚪"
	case StatusPending:
		return "⏸"
	case StatusInProgress:
		return "🔵"
	case StatusFinished:
		return "✅"
	case StatusFailed:
		return "❌"
	case StatusCancelled:
		return "🚫"
	default:
		return "?"
	}
}

// Artifact is a named, content-bearing attachment on a node, or an
// external artifact shared across the whole tree.
type Artifact struct {
	Name       string
	Content    string
	IsExternal bool
}

// Node is one problem in the tree. A parent exclusively owns its children;
// children hold only a weak back-reference upward.
type Node struct {
	mu sync.RWMutex

	Title             string
	ProblemDefinition string
	Criteria          []string
	CriteriaDone      []bool
	Artifacts         map[string]*Artifact
	Parent            *Node
	DepthFromRoot     int
	Status            Status
	VisibleArtifacts  map[string]bool
	PermanentLogs     []string

	subproblems      map[string]*Node
	subproblemOrder  []string
}

// NewRoot creates a root node with depth 0 and no parent.
func NewRoot(title, definition string) *Node {
	return newNode(title, definition, nil, 0)
}

func newNode(title, definition string, parent *Node, depth int) *Node {
	return &Node{
		Title:             title,
		ProblemDefinition: definition,
		Artifacts:         make(map[string]*Artifact),
		VisibleArtifacts:  make(map[string]bool),
		Parent:            parent,
		DepthFromRoot:      depth,
		Status:            StatusNotStarted,
		subproblems:       make(map[string]*Node),
	}
}

// AddSubproblem adds a child under this node. A title collision is a
// silent no-op: the existing child is kept and returned unchanged.
func (n *Node) AddSubproblem(title, definition string) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()

	if existing, ok := n.subproblems[title]; ok {
		return existing
	}

	child := newNode(title, definition, n, n.DepthFromRoot+1)
	n.subproblems[title] = child
	n.subproblemOrder = append(n.subproblemOrder, title)
	return child
}

// Subproblem looks up a child by title.
func (n *Node) Subproblem(title string) (*Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	child, ok := n.subproblems[title]
	return child, ok
}

// Subproblems returns children in insertion order.
func (n *Node) Subproblems() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, 0, len(n.subproblemOrder))
	for _, title := range n.subproblemOrder {
		out = append(out, n.subproblems[title])
	}
	return out
}

// AddCriteria appends an incomplete criterion.
func (n *Node) AddCriteria(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Criteria = append(n.Criteria, text)
	n.CriteriaDone = append(n.CriteriaDone, false)
}

// MarkCriteriaDone marks the 1-based criterion number as done.
func (n *Node) MarkCriteriaDone(number int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if number < 1 || number > len(n.CriteriaDone) {
		return fmt.Errorf("criteria number %d out of range (have %d)", number, len(n.CriteriaDone))
	}
	n.CriteriaDone[number-1] = true
	return nil
}

// AddArtifact attaches an artifact by name; a later call with the same
// name overwrites the prior content (names are unique per node).
func (n *Node) AddArtifact(name, content string, isExternal bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Artifacts[name] = &Artifact{Name: name, Content: content, IsExternal: isExternal}
}

// Artifact looks up an artifact by name.
func (n *Node) Artifact(name string) (*Artifact, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	a, ok := n.Artifacts[name]
	return a, ok
}

// AddPermanentLog appends a line to this node's permanent, cross-turn
// log, rendered in full by the PermanentLogs dynamic section every turn.
func (n *Node) AddPermanentLog(line string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.PermanentLogs = append(n.PermanentLogs, line)
}

// PermanentLogsSnapshot returns a defensive copy of this node's permanent
// log lines.
func (n *Node) PermanentLogsSnapshot() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.PermanentLogs))
	copy(out, n.PermanentLogs)
	return out
}

// SetPermanentLogs replaces the permanent log lines wholesale; used when
// reconstructing a node from its on-disk log file.
func (n *Node) SetPermanentLogs(lines []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.PermanentLogs = append([]string(nil), lines...)
}

// AppendToDefinition appends text to the problem definition, separated by
// a blank line.
func (n *Node) AppendToDefinition(content string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ProblemDefinition == "" {
		n.ProblemDefinition = content
		return
	}
	n.ProblemDefinition = n.ProblemDefinition + "\n\n" + content
}

// SetStatus sets the node's lifecycle status.
func (n *Node) SetStatus(s Status) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Status = s
}

// GetStatus returns the node's lifecycle status.
func (n *Node) GetStatus() Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.Status
}

// SetArtifactVisible sets the current node's view of whether a named
// artifact renders fully or truncated.
func (n *Node) SetArtifactVisible(name string, visible bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.VisibleArtifacts[name] = visible
}

// IsArtifactVisible reports the current node's view for a named artifact;
// absent entries default to false (truncated preview).
func (n *Node) IsArtifactVisible(name string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.VisibleArtifacts[name]
}

// SetCriteria replaces criteria and criteria_done wholesale; used when
// reconstructing a node from its on-disk checklist file.
func (n *Node) SetCriteria(criteria []string, done []bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Criteria = append([]string(nil), criteria...)
	n.CriteriaDone = append([]bool(nil), done...)
}

// ArtifactsSnapshot returns a defensive copy of the artifact map.
func (n *Node) ArtifactsSnapshot() map[string]*Artifact {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]*Artifact, len(n.Artifacts))
	for k, v := range n.Artifacts {
		cp := *v
		out[k] = &cp
	}
	return out
}

// AttachChild attaches a fully-built (possibly multi-level) subtree as a
// child of n, shifting every node's DepthFromRoot in that subtree to be
// relative to n. Used only when reconstructing a tree from disk, where
// children are parsed bottom-up before their parent is known.
func (n *Node) AttachChild(child *Node) {
	delta := (n.DepthFromRoot + 1) - child.DepthFromRoot
	if delta != 0 {
		child.Walk(func(c *Node) { c.DepthFromRoot += delta })
	}
	child.Parent = n

	n.mu.Lock()
	defer n.mu.Unlock()
	n.subproblems[child.Title] = child
	n.subproblemOrder = append(n.subproblemOrder, child.Title)
}

// CriteriaSnapshot returns defensive copies of criteria and criteria_done.
func (n *Node) CriteriaSnapshot() ([]string, []bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c := make([]string, len(n.Criteria))
	copy(c, n.Criteria)
	d := make([]bool, len(n.CriteriaDone))
	copy(d, n.CriteriaDone)
	return c, d
}

// Path returns the chain of titles from root to this node, inclusive.
func (n *Node) Path() []string {
	var titles []string
	for cur := n; cur != nil; cur = cur.Parent {
		titles = append([]string{cur.Title}, titles...)
	}
	return titles
}

// Walk visits this node and all descendants in subproblem order,
// depth-first pre-order.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, child := range n.Subproblems() {
		child.Walk(visit)
	}
}
