package scheduler

import (
	"testing"

	"hermes/internal/problem"
)

func buildTree() *problem.Node {
	root := problem.NewRoot("Root", "root def")
	root.AddSubproblem("Child A", "a def")
	root.AddSubproblem("Child B", "b def")
	return root
}

func TestInitialize_SetsRootInProgress(t *testing.T) {
	root := buildTree()
	s := New(nil)
	s.Initialize(root)

	if s.Current() != root {
		t.Errorf("expected root to be current")
	}
	if root.GetStatus() != problem.StatusInProgress {
		t.Errorf("root status = %v, want in_progress", root.GetStatus())
	}
}

func TestFocusDown_PushesChildAndSetsStatuses(t *testing.T) {
	root := buildTree()
	s := New(nil)
	s.Initialize(root)

	if err := s.FocusDown("Child A"); err != nil {
		t.Fatalf("FocusDown: %v", err)
	}

	cur := s.Current()
	if cur.Title != "Child A" {
		t.Fatalf("current = %q, want Child A", cur.Title)
	}
	if root.GetStatus() != problem.StatusPending {
		t.Errorf("root status = %v, want pending", root.GetStatus())
	}
	if cur.GetStatus() != problem.StatusInProgress {
		t.Errorf("child status = %v, want in_progress", cur.GetStatus())
	}
}

func TestFocusDown_UnknownTitleErrors(t *testing.T) {
	root := buildTree()
	s := New(nil)
	s.Initialize(root)

	if err := s.FocusDown("Nonexistent"); err == nil {
		t.Errorf("expected error focusing down to unknown title")
	}
}

func TestFocusUp_ResumesParentAndFinishesAtRoot(t *testing.T) {
	root := buildTree()
	s := New(nil)
	s.Initialize(root)
	_ = s.FocusDown("Child A")

	child, _ := root.Subproblem("Child A")
	if err := s.FocusUp(""); err != nil {
		t.Fatalf("FocusUp: %v", err)
	}
	if child.GetStatus() != problem.StatusFinished {
		t.Errorf("child status = %v, want finished", child.GetStatus())
	}
	if s.Current() != root {
		t.Errorf("expected root to be current again")
	}
	if root.GetStatus() != problem.StatusInProgress {
		t.Errorf("root status = %v, want in_progress", root.GetStatus())
	}

	if err := s.FocusUp(""); err != nil {
		t.Fatalf("FocusUp at root: %v", err)
	}
	if !s.Finished() {
		t.Errorf("expected scheduler to be finished after popping root")
	}
}

func TestFocusUp_AtRootWithMessageIsRejected(t *testing.T) {
	root := buildTree()
	s := New(nil)
	s.Initialize(root)

	if err := s.FocusUp("some message"); err == nil {
		t.Errorf("expected error for focus_up at root with non-empty message")
	}
	if s.Finished() {
		t.Errorf("scheduler should not be finished after a rejected focus_up")
	}
}

func TestFailAndFocusUp_MarksFailed(t *testing.T) {
	root := buildTree()
	s := New(nil)
	s.Initialize(root)
	_ = s.FocusDown("Child A")
	child, _ := root.Subproblem("Child A")

	if err := s.FailAndFocusUp(""); err != nil {
		t.Fatalf("FailAndFocusUp: %v", err)
	}
	if child.GetStatus() != problem.StatusFailed {
		t.Errorf("child status = %v, want failed", child.GetStatus())
	}
}

func TestFocusUp_DeliversInternalMessage(t *testing.T) {
	root := buildTree()
	var delivered []string
	s := New(func(title, text, origin string) {
		delivered = append(delivered, title+":"+text+":"+origin)
	})
	s.Initialize(root)
	_ = s.FocusDown("Child A")

	if err := s.FocusUp("done with A"); err != nil {
		t.Fatalf("FocusUp: %v", err)
	}
	if len(delivered) != 1 || delivered[0] != "Root:done with A:Child A" {
		t.Errorf("delivered = %v", delivered)
	}
}

func TestEnqueueAndFocusUp_ActivatesNextQueuedSibling(t *testing.T) {
	root := buildTree()
	s := New(nil)
	s.Initialize(root)

	s.EnqueueChildren("Root", []string{"Child B"})
	if err := s.FocusDown("Child A"); err != nil {
		t.Fatalf("FocusDown: %v", err)
	}

	if err := s.FocusUp(""); err != nil {
		t.Fatalf("FocusUp: %v", err)
	}

	cur := s.Current()
	if cur.Title != "Child B" {
		t.Fatalf("expected Child B to be activated next, got %q", cur.Title)
	}
	if root.GetStatus() != problem.StatusPending {
		t.Errorf("root status = %v, want pending (still has queued sibling work)", root.GetStatus())
	}
}

func TestDequeueNext_EmptyQueueReturnsFalse(t *testing.T) {
	s := New(nil)
	if _, ok := s.DequeueNext("Root"); ok {
		t.Errorf("expected false for empty queue")
	}
}

func TestForceFinish_MarksFinishedRegardlessOfDepth(t *testing.T) {
	root := buildTree()
	s := New(nil)
	s.Initialize(root)
	if err := s.FocusDown("Child A"); err != nil {
		t.Fatalf("FocusDown: %v", err)
	}

	s.ForceFinish()
	if !s.Finished() {
		t.Error("expected scheduler to be finished after ForceFinish")
	}
}
