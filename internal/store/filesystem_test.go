package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hermes/internal/knowledge"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	backup := t.TempDir()
	return New(root, backup)
}

func TestCreateRoot_WritesScaffold(t *testing.T) {
	s := newTestStore(t)

	node, err := s.CreateRoot("Research quantum batteries", "Survey the state of the art.")
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
	if node.Title != "Research quantum batteries" {
		t.Errorf("title = %q", node.Title)
	}

	for _, name := range []string{fileProblemDefinition, fileCriteria, fileBreakdown} {
		if _, err := os.Stat(filepath.Join(s.rootDir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(s.rootDir, dirArtifacts)); err != nil {
		t.Errorf("expected Artifacts dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.rootDir, dirLogsAndDebug)); err != nil {
		t.Errorf("expected logs_and_debug dir: %v", err)
	}
}

func TestCreateRoot_RejectsWhenAlreadyExists(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateRoot("Title", "Def"); err != nil {
		t.Fatalf("first CreateRoot: %v", err)
	}
	if _, err := s.CreateRoot("Other", "Def"); err == nil {
		t.Errorf("expected error creating root twice")
	}
}

func TestUpdateFilesThenLoadExisting_RoundTrips(t *testing.T) {
	s := newTestStore(t)

	root, err := s.CreateRoot("Root problem", "Top level definition.")
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
	root.AddCriteria("First criterion")
	root.AddCriteria("Second criterion")
	_ = root.MarkCriteriaDone(1)
	root.AddArtifact("notes.md", "some notes", false)
	root.AddPermanentLog("booted ok")
	root.AddPermanentLog("fetched source A")

	child := root.AddSubproblem("Child problem", "Child definition.")
	child.AddCriteria("Child criterion")

	if err := s.UpdateFiles(root); err != nil {
		t.Fatalf("UpdateFiles: %v", err)
	}

	loaded, err := s.LoadExisting()
	if err != nil {
		t.Fatalf("LoadExisting: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a loaded root, got nil")
	}
	if loaded.Title != "Root problem" {
		t.Errorf("title = %q", loaded.Title)
	}
	if loaded.ProblemDefinition != "Top level definition." {
		t.Errorf("definition = %q", loaded.ProblemDefinition)
	}

	criteria, done := loaded.CriteriaSnapshot()
	if len(criteria) != 2 || !done[0] || done[1] {
		t.Errorf("criteria round trip mismatch: %v %v", criteria, done)
	}

	if a, ok := loaded.Artifact("notes.md"); !ok || a.Content != "some notes" {
		t.Errorf("artifact round trip mismatch: %+v", a)
	}

	if logs := loaded.PermanentLogsSnapshot(); len(logs) != 2 || logs[0] != "booted ok" || logs[1] != "fetched source A" {
		t.Errorf("permanent log round trip mismatch: %v", logs)
	}

	children := loaded.Subproblems()
	if len(children) != 1 || children[0].Title != "Child problem" {
		t.Fatalf("expected one child 'Child problem', got %+v", children)
	}
	if children[0].DepthFromRoot != 1 {
		t.Errorf("child depth = %d, want 1", children[0].DepthFromRoot)
	}
	childCriteria, _ := children[0].CriteriaSnapshot()
	if len(childCriteria) != 1 || childCriteria[0] != "Child criterion" {
		t.Errorf("child criteria mismatch: %v", childCriteria)
	}
}

func TestLoadExisting_NoRootReturnsNilNoError(t *testing.T) {
	s := newTestStore(t)
	node, err := s.LoadExisting()
	if err != nil {
		t.Fatalf("LoadExisting: %v", err)
	}
	if node != nil {
		t.Errorf("expected nil node for empty store, got %+v", node)
	}
}

func TestUpdateFiles_BacksUpBeforeOverwrite(t *testing.T) {
	s := newTestStore(t)
	root, err := s.CreateRoot("Title", "Def v1")
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}

	root.AppendToDefinition("more detail")
	if err := s.UpdateFiles(root); err != nil {
		t.Fatalf("UpdateFiles: %v", err)
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		t.Fatalf("ReadDir backup: %v", err)
	}
	if len(entries) == 0 {
		t.Errorf("expected at least one backup file")
	}
}

func TestAddExternalFile_PersistsAndReloads(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddExternalFile("shared.md", "shared content"); err != nil {
		t.Fatalf("AddExternalFile: %v", err)
	}

	s2 := New(s.rootDir, s.backupDir)
	if err := s2.LoadExternalFiles(); err != nil {
		t.Fatalf("LoadExternalFiles: %v", err)
	}

	files := s2.GetExternalFiles()
	a, ok := files["shared.md"]
	if !ok {
		t.Fatalf("expected shared.md to be loaded")
	}
	if a.Content != "shared content" || !a.IsExternal {
		t.Errorf("external artifact mismatch: %+v", a)
	}
}

func TestWriteNode_SkipsExternalArtifactsUnderNode(t *testing.T) {
	s := newTestStore(t)
	root, err := s.CreateRoot("Title", "Def")
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
	root.AddArtifact("external.md", "content", true)

	if err := s.UpdateFiles(root); err != nil {
		t.Fatalf("UpdateFiles: %v", err)
	}

	entries, _ := os.ReadDir(filepath.Join(s.rootDir, dirArtifacts))
	for _, e := range entries {
		if strings.Contains(e.Name(), "external") {
			t.Errorf("external artifact should not be written under node Artifacts/: %s", e.Name())
		}
	}
}

func TestSaveAndLoadKnowledgeBase_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	entries := []knowledge.Entry{
		{Title: "B", Content: "second", AuthorNodeTitle: "Root", Timestamp: "2026-01-02T00:00:00Z", Tags: []string{"x"}},
		{Title: "A", Content: "first", AuthorNodeTitle: "Child", Timestamp: "2026-01-01T00:00:00Z"},
	}
	if err := s.SaveKnowledgeBase(entries); err != nil {
		t.Fatalf("SaveKnowledgeBase: %v", err)
	}

	loaded, err := s.LoadKnowledgeBase()
	if err != nil {
		t.Fatalf("LoadKnowledgeBase: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d entries, want 2", len(loaded))
	}
	if loaded[0].Title != "A" || loaded[1].Title != "B" {
		t.Errorf("expected ascending timestamp order, got %+v", loaded)
	}
	if loaded[0].Content != "first" || loaded[0].AuthorNodeTitle != "Child" {
		t.Errorf("entry content mismatch: %+v", loaded[0])
	}
}

func TestLoadKnowledgeBase_MissingFileReturnsNil(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.LoadKnowledgeBase()
	if err != nil {
		t.Fatalf("LoadKnowledgeBase: %v", err)
	}
	if entries != nil {
		t.Errorf("expected nil entries, got %+v", entries)
	}
}
