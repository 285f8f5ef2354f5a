package extract

import (
	"fmt"
	"strings"
)

// Document pairs an uploaded filename with its raw content.
type Document struct {
	Filename string
	Content  string
}

// Merge extracts each document by its declared format and concatenates the
// results into one corpus, each section headed by its source filename.
// Input order is preserved: it is the narrative order the model sees.
func Merge(docs []Document) string {
	var b strings.Builder
	for _, d := range docs {
		text := Text(d.Content, FormatOf(d.Filename))
		fmt.Fprintf(&b, "\n\n=== 文件: %s ===\n%s", d.Filename, text)
	}
	return b.String()
}
