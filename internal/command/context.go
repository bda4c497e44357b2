package command

import (
	"fmt"

	"hermes/internal/chat"
	"hermes/internal/knowledge"
	"hermes/internal/problem"
	"hermes/internal/scheduler"
	"hermes/internal/store"
)

// Context is the facade handlers see: the current node plus the engine
// collaborators a command is allowed to touch. Handlers never reach
// past Context into the scheduler, store, or chat registry directly,
// which keeps every side effect auditable from one call site.
type Context struct {
	Node        *problem.Node
	Root        *problem.Node
	Store       *store.Store
	KB          *knowledge.KnowledgeBase
	Scheduler   *scheduler.Scheduler
	ChatReg     *chat.Registry
	CommandName string
}

// NewContext builds a Context for dispatching one command against node.
func NewContext(node, root *problem.Node, st *store.Store, kb *knowledge.KnowledgeBase, sch *scheduler.Scheduler, chatReg *chat.Registry) *Context {
	return &Context{Node: node, Root: root, Store: st, KB: kb, Scheduler: sch, ChatReg: chatReg}
}

// AddCommandOutput routes a handler's textual result into the current
// node's auto-reply aggregator so it renders back to the LLM next turn.
func (c *Context) AddCommandOutput(name string, args map[string][]string, output string) {
	flat := make(map[string]string, len(args))
	for k, v := range args {
		if len(v) == 1 {
			flat[k] = v[0]
			continue
		}
		flat[k] = fmt.Sprintf("%v", v)
	}
	c.ChatReg.For(c.Node.Title).AddCommandOutput(name, flat, output)
}

// FocusDown activates title as a child of the current node and pushes
// it onto the scheduler's focus stack.
func (c *Context) FocusDown(title string) error {
	return c.Scheduler.FocusDown(title)
}

// FocusUp finishes the current node and resumes its parent, delivering
// message (if non-empty) into the parent's transcript.
func (c *Context) FocusUp(message string) error {
	return c.Scheduler.FocusUp(message)
}

// FailAndFocusUp fails the current node and resumes its parent.
func (c *Context) FailAndFocusUp(message string) error {
	return c.Scheduler.FailAndFocusUp(message)
}

// EnqueueChildren queues titles (already-created subproblems of the
// current node) for sequential activation as the current node resumes.
func (c *Context) EnqueueChildren(titles []string) {
	c.Scheduler.EnqueueChildren(c.Node.Title, titles)
}

// Persist writes the whole tree to disk, reflecting whatever mutation
// the calling handler just made.
func (c *Context) Persist() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.UpdateFiles(c.Root)
}
