package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// SaveDocument writes one source document under the project's week directory.
// The filename and any relative folder path are sanitized before the join;
// the returned DocumentPath reflects what actually landed on disk.
func (s *Store) SaveDocument(projectID string, content []byte, filename string, week int, relPath string) (DocumentPath, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return DocumentPath{}, err
	}
	doc := documentPath(projectID, week, relPath, filename)
	full := filepath.Join(s.root, filepath.FromSlash(doc.Rel()))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return DocumentPath{}, err
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return DocumentPath{}, err
	}
	if s.archive != nil {
		if err := s.archive.Put(context.Background(), doc, content); err != nil {
			s.log.Warn().Str("doc", doc.Rel()).Err(err).Msg("document archive failed")
		}
	}
	return doc, nil
}

// ListDocuments walks the week directory and returns the slash-separated
// relative paths of all recognized documents in lexicographic order. A week
// with no directory simply lists as empty.
func (s *Store) ListDocuments(projectID string, week int) ([]string, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, projectID, weekDir(week))
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || !recognizedExt(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadDocument returns the content of one stored document. The relative path
// goes through the same sanitizer as SaveDocument, so a traversal attempt
// resolves to a (missing) in-tree path instead of escaping the week root.
func (s *Store) ReadDocument(projectID string, week int, relPath string) ([]byte, error) {
	if _, err := s.GetProject(projectID); err != nil {
		return nil, err
	}
	segments := sanitizeSegmentsWithFile(relPath)
	if len(segments) == 0 {
		return nil, ErrNotFound
	}
	doc := DocumentPath{Project: projectID, Week: week, Segments: segments}
	b, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(doc.Rel())))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// sanitizeSegmentsWithFile treats the last segment as a filename so its
// extension survives normalization.
func sanitizeSegmentsWithFile(relPath string) []string {
	segments := sanitizeSegments(relPath)
	if len(segments) == 0 {
		return nil
	}
	// Re-sanitize the final segment as a filename to normalize .htm.
	segments[len(segments)-1] = sanitizeFilename(segments[len(segments)-1])
	return segments
}
