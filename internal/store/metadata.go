package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"teamie/internal/jsonutil"
	"teamie/internal/report"
)

// metadataPath resolves the metadata file for a project id. Ids are produced
// by this store, but a caller-supplied id is still refused if it would leave
// the data root.
func (s *Store) metadataPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("store: invalid project id %q", id)
	}
	return filepath.Join(s.root, id+metadataExt), nil
}

func (s *Store) readMetadata(id string) (report.Project, error) {
	path, err := s.metadataPath(id)
	if err != nil {
		return report.Project{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return report.Project{}, ErrNotFound
		}
		return report.Project{}, err
	}
	var p report.Project
	if err := jsonutil.UnmarshalFlex(b, &p); err != nil {
		return report.Project{}, fmt.Errorf("store: corrupt metadata for %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	for n, w := range p.Weeks {
		p.Weeks[n] = w.Normalize()
	}
	return p, nil
}

// writeMetadata persists the whole project as one unit and refreshes the
// cache. Chinese text is kept readable (no HTML escaping) in the file.
func (s *Store) writeMetadata(p report.Project) error {
	path, err := s.metadataPath(p.ID)
	if err != nil {
		return err
	}
	b, err := jsonutil.MarshalIndentNoEscape(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	s.cache.Add(p.ID, p)
	return nil
}
