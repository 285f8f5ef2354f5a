package store

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// Notion exports embed a 32-hex page id in every filename; those tokens are
// noise and get stripped before the allowlist pass.
var hexID = regexp.MustCompile(`[a-fA-F0-9]{32}`)

// fallbackName is used when nothing legible survives sanitization.
const fallbackName = "未命名文档"

// DocumentPath locates one stored document: project, week, and the sanitized
// path segments below the week directory. It is the only path representation
// the store passes around; raw strings never reach a filesystem join.
type DocumentPath struct {
	Project  string
	Week     int
	Segments []string
}

// Rel returns the slash-separated path relative to the data root.
func (p DocumentPath) Rel() string {
	parts := append([]string{p.Project, weekDir(p.Week)}, p.Segments...)
	return path.Join(parts...)
}

func weekDir(n int) string {
	return fmt.Sprintf("week_%d", n)
}

// sanitizeName strips 32-hex exporter ids, then drops every rune outside the
// allowlist (letters, digits, space, hyphen, underscore, dot) and collapses
// whitespace. The result never contains a path separator.
func sanitizeName(name string) string {
	name = hexID.ReplaceAllString(name, "")
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	out = strings.Trim(out, ". ")
	return out
}

// sanitizeFilename cleans a document filename and normalizes its extension
// (.htm becomes .html). An illegible stem falls back to a placeholder.
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	stem := sanitizeName(strings.TrimSuffix(filename, path.Ext(filename)))
	if stem == "" {
		stem = fallbackName
	}
	switch ext {
	case ".htm":
		ext = ".html"
	case "":
		return stem
	default:
		ext = "." + sanitizeName(strings.TrimPrefix(ext, "."))
	}
	return stem + ext
}

// sanitizeSegments splits a caller-supplied relative path on both separator
// styles and sanitizes each folder component. ".", ".." and empty segments
// are dropped, so traversal out of the week directory is structurally
// impossible rather than merely rejected.
func sanitizeSegments(relPath string) []string {
	if relPath == "" {
		return nil
	}
	raw := strings.FieldsFunc(relPath, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg == "." || seg == ".." {
			continue
		}
		clean := sanitizeName(seg)
		if clean == "" {
			continue
		}
		segments = append(segments, clean)
	}
	return segments
}

// documentPath builds the sanitized DocumentPath for a saved file.
func documentPath(projectID string, week int, relPath, filename string) DocumentPath {
	segments := sanitizeSegments(relPath)
	segments = append(segments, sanitizeFilename(filename))
	return DocumentPath{Project: projectID, Week: week, Segments: segments}
}

// recognizedExt reports whether a stored file carries one of the document
// extensions the pipeline understands.
func recognizedExt(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".txt", ".md":
		return true
	}
	return false
}
