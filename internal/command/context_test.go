package command

import (
	"path/filepath"
	"testing"

	"hermes/internal/chat"
	"hermes/internal/knowledge"
	"hermes/internal/problem"
	"hermes/internal/scheduler"
	"hermes/internal/store"
)

func newTestContext(t *testing.T) (*Context, *problem.Node) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "root"), filepath.Join(dir, "backup"))
	root, err := st.CreateRoot("Root", "Root definition")
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
	kb := knowledge.New(st)
	chatReg := chat.NewRegistry()
	sch := scheduler.New(chatReg.Deliver)
	sch.Initialize(root)

	ctx := NewContext(root, root, st, kb, sch, chatReg)
	return ctx, root
}

func TestContext_AddCommandOutputFlattensSingleValueArgs(t *testing.T) {
	ctx, root := newTestContext(t)
	ctx.AddCommandOutput("add_criteria", map[string][]string{"criteria": {"Ship it"}}, "ok")

	transcript := ctx.ChatReg.For(root.Title).Flush(nil)
	if transcript.CommandOutputs[0].Args["criteria"] != "Ship it" {
		t.Errorf("expected flattened single-value arg, got %+v", transcript.CommandOutputs[0].Args)
	}
}

func TestContext_FocusDownAndFocusUp(t *testing.T) {
	ctx, root := newTestContext(t)
	root.AddSubproblem("Child", "child def")

	if err := ctx.FocusDown("Child"); err != nil {
		t.Fatalf("FocusDown: %v", err)
	}
	if got := ctx.Scheduler.Current().Title; got != "Child" {
		t.Fatalf("current = %q, want Child", got)
	}

	if err := ctx.FocusUp("done"); err != nil {
		t.Fatalf("FocusUp: %v", err)
	}
	if got := ctx.Scheduler.Current().Title; got != "Root" {
		t.Fatalf("current = %q, want Root", got)
	}
}

func TestContext_EnqueueChildren(t *testing.T) {
	ctx, root := newTestContext(t)
	root.AddSubproblem("A", "a")
	root.AddSubproblem("B", "b")

	ctx.EnqueueChildren([]string{"B"})
	next, ok := ctx.Scheduler.DequeueNext(root.Title)
	if !ok || next != "B" {
		t.Fatalf("expected B queued, got %q, %v", next, ok)
	}
}
