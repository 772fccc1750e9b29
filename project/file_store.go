package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const metadataFile = "project.json"

// FileStore is a filesystem backed Store. Each project maps to a directory
// named after the project id; each file maps to its relative path under that
// directory, with a metadata document alongside.
type FileStore struct {
	mu   sync.RWMutex
	root string
}

// NewFileStore creates the root directory if needed and returns the store.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create project root: %w", err)
	}
	return &FileStore{root: root}, nil
}

// validID rejects ids that could resolve to a directory outside the store
// root. Generated ids are uuids; anything carrying separators or traversal
// is hostile input, not a lookup miss worth distinguishing.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

type fileMeta struct {
	RelativePath string `json:"relative_path"`
	ContentHash  string `json:"content_hash"`
}

type projectMeta struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	TechStack         string     `json:"tech_stack,omitempty"`
	SetupInstructions string     `json:"setup_instructions,omitempty"`
	Files             []fileMeta `json:"files"`
	CreatedAt         time.Time  `json:"created_at"`
	Status            Status     `json:"status"`
}

// Put writes the whole project directory through. Stale files from earlier
// versions are removed so the directory always mirrors the project exactly.
func (s *FileStore) Put(p *Project) error {
	if !validID(p.ID) {
		return fmt.Errorf("invalid project id %q", p.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, p.ID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear project dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}

	meta := projectMeta{
		ID:                p.ID,
		UserID:            p.UserID,
		Name:              p.Name,
		Description:       p.Description,
		TechStack:         p.TechStack,
		SetupInstructions: p.SetupInstructions,
		CreatedAt:         p.CreatedAt,
		Status:            p.Status,
	}
	for _, f := range p.Files {
		target := filepath.Join(dir, filepath.FromSlash(f.RelativePath))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create file dir: %w", err)
		}
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return fmt.Errorf("write project file %s: %w", f.RelativePath, err)
		}
		meta.Files = append(meta.Files, fileMeta{RelativePath: f.RelativePath, ContentHash: f.ContentHash})
	}

	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), raw, 0o644); err != nil {
		return fmt.Errorf("write project metadata: %w", err)
	}
	return nil
}

// Get reads the metadata and every file back from disk.
func (s *FileStore) Get(id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *FileStore) read(id string) (*Project, error) {
	if !validID(id) {
		return nil, ErrProjectNotFound
	}
	dir := filepath.Join(s.root, id)
	raw, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read project metadata: %w", err)
	}

	var meta projectMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode project metadata: %w", err)
	}

	p := &Project{
		ID:                meta.ID,
		UserID:            meta.UserID,
		Name:              meta.Name,
		Description:       meta.Description,
		TechStack:         meta.TechStack,
		SetupInstructions: meta.SetupInstructions,
		CreatedAt:         meta.CreatedAt,
		Status:            meta.Status,
	}
	for _, fm := range meta.Files {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(fm.RelativePath)))
		if err != nil {
			return nil, fmt.Errorf("read project file %s: %w", fm.RelativePath, err)
		}
		p.Files = append(p.Files, ProjectFile{
			RelativePath: fm.RelativePath,
			Content:      content,
			ContentHash:  fm.ContentHash,
		})
	}
	return p, nil
}

// List scans the root for project directories owned by the user, newest first.
func (s *FileStore) List(userID string) ([]*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("scan project root: %w", err)
	}

	var out []*Project
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := s.read(e.Name())
		if err != nil {
			continue // unreadable entries are skipped, not fatal
		}
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes the project directory or returns ErrProjectNotFound.
func (s *FileStore) Delete(id string) error {
	if !validID(id) {
		return ErrProjectNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, id)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return ErrProjectNotFound
	}
	return os.RemoveAll(dir)
}
