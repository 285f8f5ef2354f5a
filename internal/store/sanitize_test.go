package store

import (
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeFilenameStripsHexID(t *testing.T) {
	in := "Weekly Report 0123456789abcdef0123456789abcdef.html"
	got := sanitizeFilename(in)
	if got != "Weekly Report.html" {
		t.Fatalf("sanitizeFilename = %q", got)
	}
}

func TestSanitizeFilenameFallback(t *testing.T) {
	got := sanitizeFilename("0123456789abcdef0123456789abcdef.html")
	if got != fallbackName+".html" {
		t.Fatalf("sanitizeFilename = %q", got)
	}
}

func TestSanitizeFilenameNormalizesHTM(t *testing.T) {
	if got := sanitizeFilename("page.htm"); got != "page.html" {
		t.Fatalf("sanitizeFilename = %q", got)
	}
	if got := sanitizeFilename("PAGE.HTM"); got != "PAGE.html" {
		t.Fatalf("sanitizeFilename = %q", got)
	}
}

func TestSanitizeFilenameKeepsCJK(t *testing.T) {
	if got := sanitizeFilename("周报 第3周.md"); got != "周报 第3周.md" {
		t.Fatalf("sanitizeFilename = %q", got)
	}
}

func TestSanitizeFilenameDropsHostileRunes(t *testing.T) {
	got := sanitizeFilename(`a<b>:c|"d*?.txt`)
	if strings.ContainsAny(got, `<>:|"*?/\`) {
		t.Fatalf("hostile runes survived: %q", got)
	}
	if !strings.HasSuffix(got, ".txt") {
		t.Fatalf("extension lost: %q", got)
	}
}

func TestSanitizeSegmentsDropsTraversal(t *testing.T) {
	got := sanitizeSegments("../../etc/x")
	if !reflect.DeepEqual(got, []string{"etc", "x"}) {
		t.Fatalf("sanitizeSegments = %v", got)
	}
}

func TestSanitizeSegmentsMixedSeparators(t *testing.T) {
	got := sanitizeSegments(`docs\sub/..\notes`)
	if !reflect.DeepEqual(got, []string{"docs", "sub", "notes"}) {
		t.Fatalf("sanitizeSegments = %v", got)
	}
}

func TestSanitizeSegmentsEmptyAndDots(t *testing.T) {
	if got := sanitizeSegments("././//.."); got != nil && len(got) != 0 {
		t.Fatalf("sanitizeSegments = %v, want empty", got)
	}
	if got := sanitizeSegments(""); got != nil {
		t.Fatalf("sanitizeSegments(\"\") = %v", got)
	}
}

func TestDocumentPathRelStaysInWeekDir(t *testing.T) {
	doc := documentPath("project_1", 2, "../..", "../evil.html")
	rel := doc.Rel()
	if strings.Contains(rel, "..") {
		t.Fatalf("traversal survived: %q", rel)
	}
	if !strings.HasPrefix(rel, "project_1/week_2/") {
		t.Fatalf("path escaped week dir: %q", rel)
	}
}
