// Package server exposes the generation pipeline over a plain JSON HTTP API.
// Responses follow a {success, ...} envelope; taxonomy errors map to
// structured JSON, never a raw trace.
package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hupe1980/codesmith"
	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/history"
	"github.com/hupe1980/codesmith/logging"
)

// DefaultCacheSize bounds the generation response cache.
const DefaultCacheSize = 128

// Options configures the Server.
type Options struct {
	// CacheSize bounds the LRU generation cache. Zero disables caching.
	CacheSize int
	// History records chat and execution activity (defaults to in-memory).
	History *history.InMemoryStore
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Server wires the façade to HTTP handlers.
type Server struct {
	cs      *codesmith.Codesmith
	history *history.InMemoryStore
	cache   *lru.Cache[string, *core.SelectedResponse]
	logger  logging.Logger
}

// New creates a Server around the given Codesmith instance.
func New(cs *codesmith.Codesmith, optFns ...func(o *Options)) (*Server, error) {
	opts := Options{
		CacheSize: DefaultCacheSize,
		History:   history.NewInMemoryStore(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{cs: cs, history: opts.History, logger: opts.Logger}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *core.SelectedResponse](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/execute", s.handleExecute)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/projects", s.handleCreateProject)
	mux.HandleFunc("/api/projects/", s.handleProjects)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

// cacheKey derives the generation cache key from the request identity. Fields
// are length-prefixed so no prompt content can shift the field boundaries.
func cacheKey(prompt, language, model string) string {
	h := sha256.New()
	for _, field := range []string{prompt, language, model} {
		fmt.Fprintf(h, "%d:", len(field))
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
