// Package store persists projects, week reports, and their source documents
// under a single data root. It is the only component that touches this
// on-disk layout:
//
//	{root}/{project_id}.metadata            whole-project JSON
//	{root}/{project_id}/week_{n}/...        sanitized document tree
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"teamie/internal/report"
)

// ErrNotFound marks a missing project or week. It is a result, not a fault;
// transport layers map it to a 404.
var ErrNotFound = errors.New("store: not found")

const metadataExt = ".metadata"

// Store is the report store. Every metadata mutation is a whole-file
// read-modify-write serialized per project, so week assignment cannot race
// within one process.
type Store struct {
	root string
	log  zerolog.Logger

	createMu sync.Mutex
	locks    sync.Map // project id -> *sync.Mutex
	cache    *lru.Cache[string, report.Project]

	archive *S3Archive // optional document mirror
}

// SetArchive attaches an optional S3 mirror for saved documents.
func (s *Store) SetArchive(a *S3Archive) { s.archive = a }

// New creates a store rooted at dir, creating it if needed.
func New(dir string, log zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: empty data root")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, report.Project](128)
	if err != nil {
		return nil, err
	}
	return &Store{
		root:  abs,
		log:   log.With().Str("component", "store").Logger(),
		cache: cache,
	}, nil
}

// Root returns the absolute data root.
func (s *Store) Root() string { return s.root }

func (s *Store) projectLock(id string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// CreateProject allocates the next sequential project id, initializes week 1
// with an empty report, and persists the metadata.
func (s *Store) CreateProject(name string) (string, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	id := fmt.Sprintf("project_%d", s.maxProjectNumber()+1)
	now := time.Now()
	p := report.Project{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Status:    "进行中",
		CreatedAt: now,
		UpdatedAt: now,
		Weeks:     map[int]report.WeekData{1: report.NewWeekData()},
	}
	if err := s.writeMetadata(p); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) maxProjectNumber() int {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0
	}
	max := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, metadataExt) {
			continue
		}
		rest := strings.TrimPrefix(strings.TrimSuffix(name, metadataExt), "project_")
		if n, err := strconv.Atoi(rest); err == nil && n > max {
			max = n
		}
	}
	return max
}

// GetProject loads a project by id.
func (s *Store) GetProject(id string) (report.Project, error) {
	if p, ok := s.cache.Get(id); ok {
		return p, nil
	}
	p, err := s.readMetadata(id)
	if err != nil {
		return report.Project{}, err
	}
	s.cache.Add(id, p)
	return p, nil
}

// ListProjects returns summaries of all stored projects, ordered by id.
func (s *Store) ListProjects() ([]report.Summary, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	summaries := make([]report.Summary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, metadataExt) {
			continue
		}
		id := strings.TrimSuffix(name, metadataExt)
		p, err := s.GetProject(id)
		if err != nil {
			s.log.Warn().Str("project", id).Err(err).Msg("skipping unreadable metadata")
			continue
		}
		current := p.CurrentWeek()
		if current == 0 {
			current = 1
		}
		summaries = append(summaries, report.Summary{
			ID:          p.ID,
			Name:        p.Name,
			CurrentWeek: current,
			Status:      p.Status,
			TotalWeeks:  len(p.Weeks),
		})
	}
	return summaries, nil
}

// UpdateWeek upserts one week record and bumps updated_at.
func (s *Store) UpdateWeek(id string, week int, data report.WeekData) error {
	return s.mutate(id, func(p *report.Project) error {
		p.Weeks[week] = data.Normalize()
		return nil
	})
}

// GetWeek returns one week record, or ErrNotFound.
func (s *Store) GetWeek(id string, week int) (report.WeekData, error) {
	p, err := s.GetProject(id)
	if err != nil {
		return report.WeekData{}, err
	}
	w, ok := p.Weeks[week]
	if !ok {
		return report.WeekData{}, ErrNotFound
	}
	return w, nil
}

// NextWeek returns the week number a new report for this project would get.
func (s *Store) NextWeek(id string) (int, error) {
	p, err := s.GetProject(id)
	if err != nil {
		return 0, err
	}
	return p.CurrentWeek() + 1, nil
}

// UpdateStatus changes the project status.
func (s *Store) UpdateStatus(id, status string) error {
	return s.mutate(id, func(p *report.Project) error {
		p.Status = strings.TrimSpace(status)
		return nil
	})
}

// DeleteWeek removes one week record and its document directory. Deleting an
// absent week returns ErrNotFound and leaves sibling weeks untouched.
func (s *Store) DeleteWeek(id string, week int) error {
	err := s.mutate(id, func(p *report.Project) error {
		if _, ok := p.Weeks[week]; !ok {
			return ErrNotFound
		}
		delete(p.Weeks, week)
		return nil
	})
	if err != nil {
		return err
	}
	dir := filepath.Join(s.root, id, weekDir(week))
	if err := os.RemoveAll(dir); err != nil {
		s.log.Warn().Str("dir", dir).Err(err).Msg("week directory cleanup failed")
	}
	if s.archive != nil {
		if err := s.archive.Remove(context.Background(), path.Join(id, weekDir(week))); err != nil {
			s.log.Warn().Str("project", id).Int("week", week).Err(err).Msg("archive cleanup failed")
		}
	}
	return nil
}

// DeleteProject removes the project metadata and its whole file tree.
func (s *Store) DeleteProject(id string) error {
	mu := s.projectLock(id)
	mu.Lock()
	defer mu.Unlock()

	metaPath, err := s.metadataPath(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(metaPath); err != nil {
		return ErrNotFound
	}
	if err := os.Remove(metaPath); err != nil {
		return err
	}
	s.cache.Remove(id)
	if err := os.RemoveAll(filepath.Join(s.root, id)); err != nil {
		s.log.Warn().Str("project", id).Err(err).Msg("project tree cleanup failed")
	}
	if s.archive != nil {
		if err := s.archive.Remove(context.Background(), id); err != nil {
			s.log.Warn().Str("project", id).Err(err).Msg("archive cleanup failed")
		}
	}
	return nil
}

// mutate runs a read-modify-write cycle over one project's metadata under
// the project lock.
func (s *Store) mutate(id string, fn func(*report.Project) error) error {
	mu := s.projectLock(id)
	mu.Lock()
	defer mu.Unlock()

	p, err := s.readMetadata(id)
	if err != nil {
		return err
	}
	if p.Weeks == nil {
		p.Weeks = map[int]report.WeekData{}
	}
	if err := fn(&p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return s.writeMetadata(p)
}
