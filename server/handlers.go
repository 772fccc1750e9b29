package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/history"
	"github.com/hupe1980/codesmith/project"
)

type chatRequest struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Language string `json:"language"`
	Model    string `json:"model"`
}

type chatResponse struct {
	Success      bool    `json:"success"`
	ModelUsed    string  `json:"model_used,omitempty"`
	Code         string  `json:"code,omitempty"`
	Language     string  `json:"language,omitempty"`
	Explanation  string  `json:"explanation,omitempty"`
	QualityScore float64 `json:"quality_score,omitempty"`
	Error        string  `json:"error,omitempty"`
}

type executeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	UserID   string `json:"user_id"`
}

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TechStack   string `json:"tech_stack"`
	UserID      string `json:"user_id"`
}

type updateFileRequest struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
	FilePath  string `json:"file_path"`
	Content   string `json:"content"`
}

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.Model == "" {
		req.Model = core.ModelAuto
	}

	key := cacheKey(req.Message, req.Language, req.Model)
	if s.cache != nil {
		if sel, ok := s.cache.Get(key); ok {
			// A cache hit is still a served generation for the user.
			s.recordChat(req.UserID, req.Message, sel)
			writeJSON(w, http.StatusOK, map[string]any{
				"success":  true,
				"cached":   true,
				"response": selectionResponse(sel),
			})
			return
		}
	}

	sel, err := s.cs.GenerateCode(r.Context(), core.CodeRequest{
		Prompt:         req.Message,
		Language:       req.Language,
		RequestedModel: req.Model,
	})
	if err != nil {
		if errors.Is(err, core.ErrNoViableCandidate) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"response": chatResponse{
					Success: false,
					Error:   "no provider produced a usable response",
				},
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("chat handled", "provider", sel.SourceProviderID, "language", sel.Language)
	if s.cache != nil {
		s.cache.Add(key, sel)
	}
	s.recordChat(req.UserID, req.Message, sel)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": selectionResponse(sel),
	})
}

// recordChat appends the served generation to the user's history. Anonymous
// requests carry no user id and are not recorded.
func (s *Server) recordChat(userID, message string, sel *core.SelectedResponse) {
	if userID == "" {
		return
	}
	s.history.AppendChat(userID, history.ChatRecord{
		Prompt:    message,
		Language:  sel.Language,
		ModelUsed: sel.SourceProviderID,
		Response:  *sel,
		Timestamp: time.Now().UTC(),
	})
}

// handleExecute handles POST /api/execute.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := s.cs.ExecuteCode(r.Context(), req.Code, req.Language)
	if err != nil {
		if errors.Is(err, core.ErrUnsupportedLanguage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.UserID != "" {
		s.history.AppendExecution(req.UserID, history.ExecutionRecord{
			Language:  req.Language,
			Result:    result,
			Timestamp: time.Now().UTC(),
		})
	}

	body := map[string]any{
		"success":            result.Success,
		"exit_code":          result.ExitCode,
		"termination_reason": result.TerminationReason.String(),
		"wall_time_ms":       result.WallTime.Milliseconds(),
	}
	if result.Stdout != "" {
		body["output"] = result.Stdout
	}
	if result.Stderr != "" {
		body["error"] = result.Stderr
	} else if !result.Success {
		body["error"] = result.TerminationReason.String()
	}
	writeJSON(w, http.StatusOK, body)
}

// handleAnalyze handles POST /api/analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	analysis, err := s.cs.AnalyzeCode(r.Context(), req.Code, req.Language)
	if err != nil {
		writeError(w, http.StatusBadGateway, "analysis unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "analysis": analysis})
}

// handleCreateProject handles POST /api/projects.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.UserID == "" {
		req.UserID = "anonymous"
	}
	if req.Name == "" {
		req.Name = projectNameFrom(req.Description)
	}

	proj, err := s.cs.CreateProject(r.Context(), req.UserID, req.Name, req.Description, req.TechStack, core.CodeRequest{
		Prompt:         req.Description,
		Language:       languageFor(req.TechStack),
		RequestedModel: core.ModelAuto,
	})
	if err != nil {
		if errors.Is(err, core.ErrNoViableCandidate) {
			writeError(w, http.StatusBadGateway, "code generation failed for this project")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"project_id":    proj.ID,
		"project_name":  proj.Name,
		"files_created": len(proj.Files),
	})
}

// handleProjects dispatches the path-parameter project routes:
//
//	GET    /api/projects/{user}
//	GET    /api/projects/{user}/{id}
//	GET    /api/projects/{user}/{id}/export
//	DELETE /api/projects/{user}/{id}
//	PUT    /api/projects/files
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/")
	if rest == "files" {
		s.handleUpdateFile(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.listProjects(w, parts[0])
	case len(parts) == 2 && r.Method == http.MethodGet:
		s.getProject(w, parts[0], parts[1])
	case len(parts) == 2 && r.Method == http.MethodDelete:
		s.deleteProject(w, parts[0], parts[1])
	case len(parts) == 3 && parts[2] == "export" && r.Method == http.MethodGet:
		s.exportProject(w, parts[0], parts[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) ownedProject(userID, id string) (*project.Project, error) {
	p, err := s.cs.Projects().Get(id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, project.ErrProjectNotFound
	}
	return p, nil
}

func (s *Server) listProjects(w http.ResponseWriter, userID string) {
	projects, err := s.cs.Projects().List(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]map[string]any, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, projectSummary(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "projects": summaries})
}

func (s *Server) getProject(w http.ResponseWriter, userID, id string) {
	p, err := s.ownedProject(userID, id)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	files := make([]map[string]any, 0, len(p.Files))
	for _, f := range p.Files {
		files = append(files, map[string]any{
			"path":         f.RelativePath,
			"content":      string(f.Content),
			"content_hash": f.ContentHash,
		})
	}
	body := projectSummary(p)
	body["success"] = true
	body["files"] = files
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) deleteProject(w http.ResponseWriter, userID, id string) {
	if _, err := s.ownedProject(userID, id); err != nil {
		writeProjectError(w, err)
		return
	}
	if err := s.cs.Projects().Delete(id); err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) exportProject(w http.ResponseWriter, userID, id string) {
	p, err := s.ownedProject(userID, id)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	raw, err := s.cs.Projects().ExportZip(id)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Name+".zip"))
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// handleUpdateFile handles PUT /api/projects/files.
func (s *Server) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req updateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := s.ownedProject(req.UserID, req.ProjectID); err != nil {
		writeProjectError(w, err)
		return
	}

	p, err := s.cs.Projects().UpdateFile(req.ProjectID, req.FilePath, []byte(req.Content))
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"project_id":  p.ID,
		"files_count": len(p.Files),
	})
}

// handleHistory handles GET /api/history/{user}.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/history/"), "/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	chats := s.history.Chats(userID)
	if chats == nil {
		chats = []history.ChatRecord{}
	}
	executions := s.history.Executions(userID)
	if executions == nil {
		executions = []history.ExecutionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"chats":      chats,
		"executions": executions,
	})
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	providers := s.cs.Providers()
	ids := make([]string, 0, len(providers))
	for _, info := range providers {
		ids = append(ids, info.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": ids,
	})
}

func selectionResponse(sel *core.SelectedResponse) chatResponse {
	return chatResponse{
		Success:      true,
		ModelUsed:    sel.SourceProviderID,
		Code:         sel.Code,
		Language:     sel.Language,
		Explanation:  sel.Explanation,
		QualityScore: sel.QualityScore,
	}
}

func projectSummary(p *project.Project) map[string]any {
	return map[string]any{
		"project_id":         p.ID,
		"name":               p.Name,
		"description":        p.Description,
		"tech_stack":         p.TechStack,
		"setup_instructions": p.SetupInstructions,
		"status":             string(p.Status),
		"created_at":         p.CreatedAt,
		"files_count":        len(p.Files),
	}
}

// writeProjectError maps project taxonomy errors to status codes.
func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case project.IsNotFound(err), errors.Is(err, project.ErrFileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, project.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// projectNameFrom derives a short name from the project description.
func projectNameFrom(description string) string {
	words := strings.Fields(description)
	if len(words) > 4 {
		words = words[:4]
	}
	name := strings.ToLower(strings.Join(words, "-"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, name)
}

// languageFor picks the generation language matching a tech stack.
func languageFor(techStack string) string {
	switch strings.ToLower(strings.TrimSpace(techStack)) {
	case "node", "nodejs", "express", "javascript", "js":
		return "javascript"
	case "go", "golang":
		return "go"
	default:
		return "python"
	}
}
