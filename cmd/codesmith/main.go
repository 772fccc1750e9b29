// Command codesmith runs the code generation API server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/codesmith"
	"github.com/hupe1980/codesmith/config"
	"github.com/hupe1980/codesmith/logging"
	"github.com/hupe1980/codesmith/project"
	"github.com/hupe1980/codesmith/provider"
	"github.com/hupe1980/codesmith/provider/anthropic"
	"github.com/hupe1980/codesmith/provider/gemini"
	"github.com/hupe1980/codesmith/provider/openai"
	"github.com/hupe1980/codesmith/sandbox"
	"github.com/hupe1980/codesmith/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewLogger(logging.DefaultLoggerConfig())

	providers := buildProviders(cfg, logger)
	if len(providers) == 0 {
		logger.Warn("no provider credentials configured, running on fallback templates only")
	}

	store, err := project.NewFileStore(cfg.ProjectRoot)
	if err != nil {
		log.Fatalf("open project store: %v", err)
	}

	cs := codesmith.New(func(o *codesmith.Options) {
		o.Providers = providers
		o.RouteTimeout = cfg.RouteTimeout
		o.ProviderTimeout = cfg.ProviderTimeout
		o.SandboxLimits = sandbox.Limits{
			WallTime:    cfg.SandboxTimeout,
			MemoryBytes: sandbox.DefaultLimits().MemoryBytes,
			OutputBytes: sandbox.DefaultLimits().OutputBytes,
		}
		o.ProjectStore = store
		o.Logger = logger
	})

	srv, err := server.New(cs, func(o *server.Options) {
		o.CacheSize = cfg.CacheSize
		o.Logger = logger
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Port,
		Handler:           withCORS(srv.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", cfg.Port, "providers", len(providers))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

// buildProviders constructs one adapter per configured credential. A missing
// credential disables the adapter, never fails startup.
func buildProviders(cfg *config.Config, logger logging.Logger) []provider.Provider {
	var providers []provider.Provider
	byID := map[string]provider.Provider{}

	if cfg.OpenAIAPIKey != "" {
		byID[openai.ProviderID] = openai.NewAdapter(func(o *openai.Options) {
			o.APIKey = cfg.OpenAIAPIKey
		})
	}
	if cfg.AnthropicAPIKey != "" {
		byID[anthropic.ProviderID] = anthropic.NewAdapter(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		})
	}
	if cfg.GeminiAPIKey != "" {
		g, err := gemini.NewAdapter(context.Background(), func(o *gemini.Options) {
			o.APIKey = cfg.GeminiAPIKey
		})
		if err != nil {
			logger.Warn("gemini adapter disabled", "error", err)
		} else {
			byID[gemini.ProviderID] = g
		}
	}

	// Priority order from config; anything configured but unlisted goes last.
	for _, id := range cfg.SelectorOrder {
		if p, ok := byID[id]; ok {
			providers = append(providers, p)
			delete(byID, id)
		}
	}
	for _, p := range byID {
		providers = append(providers, p)
	}
	return providers
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
