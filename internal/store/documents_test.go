package store

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSaveListRoundTrip(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateProject("Alpha")

	inputs := []struct {
		filename string
		relPath  string
	}{
		{"notes 0123456789abcdef0123456789abcdef.html", ""},
		{"plan.md", "docs/sub"},
		{"x.txt", "../../etc"},
	}
	for _, in := range inputs {
		if _, err := s.SaveDocument(id, []byte("content"), in.filename, 1, in.relPath); err != nil {
			t.Fatalf("SaveDocument(%q): %v", in.filename, err)
		}
	}

	got, err := s.ListDocuments(id, 1)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	want := []string{"docs/sub/plan.md", "etc/x.txt", "notes.html"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListDocuments = %v, want %v", got, want)
	}
	for _, rel := range got {
		if strings.Contains(rel, "..") {
			t.Fatalf("listed path contains traversal: %q", rel)
		}
	}
}

func TestSaveDocumentReturnsLandedPath(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateProject("Alpha")
	doc, err := s.SaveDocument(id, []byte("x"), "page.htm", 3, "a/../b")
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if doc.Rel() != "project_1/week_3/a/b/page.html" {
		t.Fatalf("Rel = %q", doc.Rel())
	}
}

func TestReadDocument(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateProject("Alpha")
	_, _ = s.SaveDocument(id, []byte("hello"), "a.txt", 1, "sub")

	b, err := s.ReadDocument(id, 1, "sub/a.txt")
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("content = %q", b)
	}
}

func TestReadDocumentTraversalResolvesInTree(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateProject("Alpha")
	_, err := s.ReadDocument(id, 1, "../../"+id+".metadata")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("traversal read = %v, want ErrNotFound", err)
	}
}

func TestListDocumentsFiltersUnknownExtensions(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateProject("Alpha")
	_, _ = s.SaveDocument(id, []byte("x"), "keep.md", 1, "")
	_, _ = s.SaveDocument(id, []byte("y"), "skip.bin", 1, "")

	got, _ := s.ListDocuments(id, 1)
	if !reflect.DeepEqual(got, []string{"keep.md"}) {
		t.Fatalf("ListDocuments = %v", got)
	}
}

func TestListDocumentsMissingWeekIsEmpty(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateProject("Alpha")
	got, err := s.ListDocuments(id, 9)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ListDocuments = %v, want empty", got)
	}
}

func TestDocumentOpsRequireProject(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveDocument("project_9", []byte("x"), "a.txt", 1, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SaveDocument = %v, want ErrNotFound", err)
	}
	if _, err := s.ListDocuments("project_9", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ListDocuments = %v, want ErrNotFound", err)
	}
	if _, err := s.ReadDocument("project_9", 1, "a.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadDocument = %v, want ErrNotFound", err)
	}
}
