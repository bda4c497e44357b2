// Package scheduler drives which node in the problem tree is current. At
// most one node is ever current at a time: a focus-stack plus a
// per-parent children queue for sequential sibling activation.
package scheduler

import (
	"fmt"
	"sync"

	"hermes/internal/logging"
	"hermes/internal/problem"
)

// DeliverFunc routes an internal message to the aggregator for a node
// title, decoupling the scheduler from the chat package.
type DeliverFunc func(nodeTitle, text, originTitle string)

// Scheduler holds the focus stack and per-parent children queues.
type Scheduler struct {
	mu            sync.Mutex
	focusStack    []*problem.Node
	childrenQueue map[string][]string
	finished      bool
	deliver       DeliverFunc
}

// New creates a Scheduler. deliver may be nil, in which case internal
// messages on focus transitions are simply dropped.
func New(deliver DeliverFunc) *Scheduler {
	return &Scheduler{
		childrenQueue: make(map[string][]string),
		deliver:       deliver,
	}
}

// Initialize seeds the focus stack with root and marks it in progress.
func (s *Scheduler) Initialize(root *problem.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusStack = []*problem.Node{root}
	s.finished = false
	root.SetStatus(problem.StatusInProgress)
	logging.SchedulerDebug("initialized with root %q", root.Title)
}

// Current returns the top-of-stack node, or nil if the stack is empty.
func (s *Scheduler) Current() *problem.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Scheduler) current() *problem.Node {
	if len(s.focusStack) == 0 {
		return nil
	}
	return s.focusStack[len(s.focusStack)-1]
}

// Finished reports whether the scheduler has resolved the root and has
// no more work.
func (s *Scheduler) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// FocusDown pushes the named child of the current node onto the stack.
func (s *Scheduler) FocusDown(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current()
	if cur == nil {
		return fmt.Errorf("scheduler: cannot focus_down %q, no current node", title)
	}
	child, ok := cur.Subproblem(title)
	if !ok {
		return fmt.Errorf("scheduler: %q is not a subproblem of %q", title, cur.Title)
	}

	cur.SetStatus(problem.StatusPending)
	s.focusStack = append(s.focusStack, child)
	child.SetStatus(problem.StatusInProgress)
	logging.SchedulerDebug("focus_down: %q -> %q", cur.Title, title)
	return nil
}

// FocusUp finishes the current node, pops it, resumes its parent (or
// activates the parent's next queued sibling instead), and delivers
// message to the new top's aggregator. Calling FocusUp at the root with
// a non-empty message is a scheduler violation: the message is discarded
// and an error is returned (the command layer surfaces it as a
// command-output error, never silently).
func (s *Scheduler) FocusUp(message string) error {
	return s.pop(problem.StatusFinished, message)
}

// FailAndFocusUp behaves like FocusUp but marks the current node failed.
func (s *Scheduler) FailAndFocusUp(message string) error {
	return s.pop(problem.StatusFailed, message)
}

func (s *Scheduler) pop(terminal problem.Status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current()
	if cur == nil {
		return fmt.Errorf("scheduler: cannot focus_up, no current node")
	}

	if len(s.focusStack) == 1 && message != "" {
		return fmt.Errorf("scheduler: focus_up at root with a non-empty message is not allowed")
	}

	cur.SetStatus(terminal)
	s.focusStack = s.focusStack[:len(s.focusStack)-1]

	newTop := s.current()
	if newTop == nil {
		s.finished = true
		logging.Scheduler("root resolved, scheduler finished")
		return nil
	}

	newTop.SetStatus(problem.StatusInProgress)

	if message != "" && s.deliver != nil {
		s.deliver(newTop.Title, message, cur.Title)
	}

	if next, ok := s.dequeueLocked(newTop.Title); ok {
		logging.SchedulerDebug("focus_up: resuming queued sibling %q under %q", next, newTop.Title)
		child, ok := newTop.Subproblem(next)
		if !ok {
			return fmt.Errorf("scheduler: queued sibling %q is not a subproblem of %q", next, newTop.Title)
		}
		newTop.SetStatus(problem.StatusPending)
		s.focusStack = append(s.focusStack, child)
		child.SetStatus(problem.StatusInProgress)
	}

	return nil
}

// EnqueueChildren appends titles to parentTitle's children queue, used by
// activate_subproblems_and_wait for titles 2..N (title 1 is activated
// immediately via FocusDown).
func (s *Scheduler) EnqueueChildren(parentTitle string, titles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.childrenQueue[parentTitle] = append(s.childrenQueue[parentTitle], titles...)
}

// DequeueNext pops the next queued child title for parentTitle, if any.
func (s *Scheduler) DequeueNext(parentTitle string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dequeueLocked(parentTitle)
}

func (s *Scheduler) dequeueLocked(parentTitle string) (string, bool) {
	queue := s.childrenQueue[parentTitle]
	if len(queue) == 0 {
		return "", false
	}
	next := queue[0]
	s.childrenQueue[parentTitle] = queue[1:]
	return next, true
}

// ForceFinish immediately marks the scheduler finished regardless of
// focus-stack depth, used when the LLM response carries the
// SHUT_DOWN_DEEP_RESEARCHER sentinel.
func (s *Scheduler) ForceFinish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	logging.Scheduler("force-finished by shutdown sentinel")
}

// Depth returns the current focus stack depth (root is depth 1).
func (s *Scheduler) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.focusStack)
}
