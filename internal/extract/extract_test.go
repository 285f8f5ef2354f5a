package extract

import (
	"strings"
	"testing"
)

func TestTextIdentityForPlainFormats(t *testing.T) {
	for _, f := range []Format{FormatText, FormatMD} {
		in := "# 标题\n\nline one\n\tline two  with  spaces\n"
		if got := Text(in, f); got != in {
			t.Fatalf("Text(%s) modified plain content: %q", f, got)
		}
	}
}

func TestTextStripsScriptAndStyle(t *testing.T) {
	in := `<html><head><style>p{color:red}</style></head><body><script>x()</script><p>Shipped feature A</p></body></html>`
	got := Text(in, FormatHTML)
	if !strings.Contains(got, "Shipped feature A") {
		t.Fatalf("text lost body content: %q", got)
	}
	if strings.Contains(got, "x()") || strings.Contains(got, "color:red") {
		t.Fatalf("script/style content leaked: %q", got)
	}
}

func TestTextCollapsesWhitespace(t *testing.T) {
	in := "<p>a\n\n   b</p><p>c</p>"
	got := Text(in, FormatHTML)
	if strings.Contains(got, "  ") {
		t.Fatalf("whitespace run survived: %q", got)
	}
	if got != "a b c" {
		t.Fatalf("Text = %q, want %q", got, "a b c")
	}
}

func TestTextUnknownFormatFallsBackToHTML(t *testing.T) {
	got := Text("<b>hello</b>", FormatUnknown)
	if got != "hello" {
		t.Fatalf("Text = %q, want %q", got, "hello")
	}
}

func TestFormatOf(t *testing.T) {
	cases := map[string]Format{
		"report.html":  FormatHTML,
		"REPORT.HTM":   FormatHTML,
		"notes.txt":    FormatText,
		"plan.md":      FormatMD,
		"archive.docx": FormatUnknown,
		"noext":        FormatUnknown,
	}
	for name, want := range cases {
		if got := FormatOf(name); got != want {
			t.Errorf("FormatOf(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestMergePreservesOrderAndHeaders(t *testing.T) {
	corpus := Merge([]Document{
		{Filename: "b.txt", Content: "second? no, first"},
		{Filename: "a.md", Content: "listed second"},
	})
	i := strings.Index(corpus, "=== 文件: b.txt ===")
	j := strings.Index(corpus, "=== 文件: a.md ===")
	if i == -1 || j == -1 {
		t.Fatalf("missing file headers in corpus: %q", corpus)
	}
	if i > j {
		t.Fatalf("merge re-ordered documents")
	}
	if !strings.Contains(corpus, "second? no, first") {
		t.Fatalf("content missing from corpus")
	}
}
