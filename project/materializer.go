package project

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/logging"
)

// Spec describes a project to materialize from generated code.
type Spec struct {
	Name        string
	Description string
	TechStack   string
	Code        string
}

// MaterializerOptions configures a Materializer.
type MaterializerOptions struct {
	// Logger receives materialization events.
	Logger logging.Logger
	// Now supplies timestamps, overridable in tests.
	Now func() time.Time
	// NewID supplies project ids, overridable in tests.
	NewID func() string
}

// Materializer turns selected responses into persisted projects and serializes
// all mutations of one project id through a per-id lock.
type Materializer struct {
	store  Store
	locks  sync.Map // project id -> *sync.Mutex
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

// NewMaterializer creates a Materializer on top of the given store.
func NewMaterializer(store Store, optFns ...func(o *MaterializerOptions)) *Materializer {
	opts := MaterializerOptions{
		Logger: logging.NewDefaultSlogLogger(),
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Materializer{
		store:  store,
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}
}

func (m *Materializer) lock(id string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Materialize persists a single-file project holding a selected response. The
// file name follows the response language.
func (m *Materializer) Materialize(userID string, sel *core.SelectedResponse) (*Project, error) {
	if sel == nil || strings.TrimSpace(sel.Code) == "" {
		return nil, fmt.Errorf("materialize: empty selection")
	}

	p := &Project{
		ID:        m.newID(),
		UserID:    userID,
		Name:      "snippet-" + m.now().UTC().Format("20060102-150405"),
		TechStack: sel.Language,
		CreatedAt: m.now().UTC(),
		Status:    StatusCreated,
		Files: []ProjectFile{
			NewProjectFile(entryPointFor(sel.Language), []byte(sel.Code)),
		},
	}
	if err := m.store.Put(p); err != nil {
		return nil, err
	}
	m.logger.Info("project materialized", "project_id", p.ID, "user_id", userID, "files", len(p.Files))
	return p.Clone(), nil
}

// MaterializeProject expands a tech stack skeleton around generated code and
// persists the resulting file tree.
func (m *Materializer) MaterializeProject(userID string, spec Spec) (*Project, error) {
	sk := SkeletonFor(spec.TechStack)
	files, err := sk.Render(spec.Name, spec.Description, spec.Code)
	if err != nil {
		return nil, err
	}

	p := &Project{
		ID:                m.newID(),
		UserID:            userID,
		Name:              spec.Name,
		Description:       spec.Description,
		TechStack:         sk.TechStack,
		SetupInstructions: sk.SetupInstructions,
		Files:             files,
		CreatedAt:         m.now().UTC(),
		Status:            StatusCreated,
	}
	if p.Name == "" {
		p.Name = "project-" + p.ID[:8]
	}
	if err := m.store.Put(p); err != nil {
		return nil, err
	}
	m.logger.Info("project materialized", "project_id", p.ID, "user_id", userID, "tech_stack", p.TechStack, "files", len(p.Files))
	return p.Clone(), nil
}

// Get returns a project by id.
func (m *Materializer) Get(id string) (*Project, error) {
	return m.store.Get(id)
}

// List returns the user's projects, newest first.
func (m *Materializer) List(userID string) ([]*Project, error) {
	return m.store.List(userID)
}

// Delete removes a project.
func (m *Materializer) Delete(id string) error {
	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	if err := m.store.Delete(id); err != nil {
		return err
	}
	m.locks.Delete(id)
	m.logger.Info("project deleted", "project_id", id)
	return nil
}

// UpdateFile writes or replaces one file of a project.
func (m *Materializer) UpdateFile(id, relativePath string, content []byte) (*Project, error) {
	cleaned, err := cleanRelPath(relativePath)
	if err != nil {
		return nil, err
	}

	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	p, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	p.upsertFile(NewProjectFile(cleaned, content))
	sortFiles(p.Files)
	if err := m.store.Put(p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// RenameFile moves a file to a new relative path within the project.
func (m *Materializer) RenameFile(id, oldPath, newPath string) (*Project, error) {
	oldClean, err := cleanRelPath(oldPath)
	if err != nil {
		return nil, err
	}
	newClean, err := cleanRelPath(newPath)
	if err != nil {
		return nil, err
	}

	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	p, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	f, ok := p.File(oldClean)
	if !ok {
		return nil, ErrFileNotFound
	}
	p.removeFile(oldClean)
	p.upsertFile(NewProjectFile(newClean, f.Content))
	sortFiles(p.Files)
	if err := m.store.Put(p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// DeleteFile removes one file from a project.
func (m *Materializer) DeleteFile(id, relativePath string) (*Project, error) {
	cleaned, err := cleanRelPath(relativePath)
	if err != nil {
		return nil, err
	}

	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	p, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	if !p.removeFile(cleaned) {
		return nil, ErrFileNotFound
	}
	if err := m.store.Put(p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// ExportZip packs the project's files into a zip archive, paths preserved.
func (m *Materializer) ExportZip(id string) ([]byte, error) {
	p, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := append([]ProjectFile(nil), p.Files...)
	sortFiles(files)
	for _, f := range files {
		w, err := zw.Create(f.RelativePath)
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", f.RelativePath, err)
		}
		if _, err := w.Write(f.Content); err != nil {
			return nil, fmt.Errorf("zip write %s: %w", f.RelativePath, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// entryPointFor picks a file name for a bare snippet of the given language.
func entryPointFor(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "javascript", "js", "node", "nodejs":
		return "main.js"
	case "go", "golang":
		return "main.go"
	default:
		return "main.py"
	}
}
