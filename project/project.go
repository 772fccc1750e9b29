// Package project owns the materialization of code artifacts into persisted
// file-tree projects and all subsequent edits to them. Projects are the only
// mutable shared state in the system; every mutation of one project id is
// serialized through a per-id lock while reads stay unrestricted.
package project

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"sort"
	"strings"
	"time"
)

// Status tracks the lifecycle of a project.
type Status string

const (
	// StatusDraft marks a project that has not been fully written yet.
	StatusDraft Status = "draft"
	// StatusCreated marks a materialized, editable project.
	StatusCreated Status = "created"
	// StatusBuilding marks a project with a build in flight.
	StatusBuilding Status = "building"
	// StatusDeployed marks a project pushed to an external platform.
	StatusDeployed Status = "deployed"
)

// ProjectFile is one file of a project. RelativePath is unique within the
// project and always normalized (no traversal outside the project root).
type ProjectFile struct {
	RelativePath string `json:"relative_path"`
	Content      []byte `json:"content"`
	ContentHash  string `json:"content_hash"`
}

// NewProjectFile builds a file entry with its content hash.
func NewProjectFile(relativePath string, content []byte) ProjectFile {
	sum := sha256.Sum256(content)
	return ProjectFile{
		RelativePath: relativePath,
		Content:      content,
		ContentHash:  hex.EncodeToString(sum[:]),
	}
}

// Project is a named, ordered file tree created from a generation result.
// It is mutated only through the Materializer API, never concurrently by two
// callers for the same id.
type Project struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	Name              string        `json:"name"`
	Description       string        `json:"description,omitempty"`
	TechStack         string        `json:"tech_stack,omitempty"`
	SetupInstructions string        `json:"setup_instructions,omitempty"`
	Files             []ProjectFile `json:"files"`
	CreatedAt         time.Time     `json:"created_at"`
	Status            Status        `json:"status"`
}

// File returns the file at relativePath, if present.
func (p *Project) File(relativePath string) (ProjectFile, bool) {
	for _, f := range p.Files {
		if f.RelativePath == relativePath {
			return f, true
		}
	}
	return ProjectFile{}, false
}

// Clone returns a deep copy so stores can hand out snapshots without
// exposing internal buffers.
func (p *Project) Clone() *Project {
	cp := *p
	cp.Files = make([]ProjectFile, len(p.Files))
	for i, f := range p.Files {
		content := make([]byte, len(f.Content))
		copy(content, f.Content)
		f.Content = content
		cp.Files[i] = f
	}
	return &cp
}

func (p *Project) upsertFile(f ProjectFile) {
	for i := range p.Files {
		if p.Files[i].RelativePath == f.RelativePath {
			p.Files[i] = f
			return
		}
	}
	p.Files = append(p.Files, f)
}

func (p *Project) removeFile(relativePath string) bool {
	for i := range p.Files {
		if p.Files[i].RelativePath == relativePath {
			p.Files = append(p.Files[:i], p.Files[i+1:]...)
			return true
		}
	}
	return false
}

// sortFiles orders files by path so renders and exports are deterministic.
func sortFiles(files []ProjectFile) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
}

// cleanRelPath normalizes a caller-supplied relative path and rejects
// anything that could escape the project root.
func cleanRelPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." ||
		path.IsAbs(cleaned) || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
