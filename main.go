package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irenemg8/chatbot-sub001/internal/alert"
	"github.com/irenemg8/chatbot-sub001/internal/audit"
	"github.com/irenemg8/chatbot-sub001/internal/cache"
	"github.com/irenemg8/chatbot-sub001/internal/classifier"
	"github.com/irenemg8/chatbot-sub001/internal/config"
	"github.com/irenemg8/chatbot-sub001/internal/database"
	"github.com/irenemg8/chatbot-sub001/internal/handlers"
	"github.com/irenemg8/chatbot-sub001/internal/health"
	"github.com/irenemg8/chatbot-sub001/internal/pipeline"
	"github.com/irenemg8/chatbot-sub001/internal/report"
	"github.com/irenemg8/chatbot-sub001/internal/repository"
)

func main() {
	cfg := config.Load()

	if problems := cfg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			log.Printf("Config problem: %s", p)
		}
		log.Fatal("Refusing to start with invalid configuration")
	}

	// Optional pattern database
	var repo *repository.PatternRepository
	if cfg.DBDSN != "" {
		db, err := database.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("Failed to open pattern database: %v", err)
		}
		repo = repository.NewPatternRepository(db)
	}

	// Optional pattern cache
	var patternCache *cache.PatternCache
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		patternCache = cache.NewPatternCache(rdb)
	}

	cls := buildClassifier(repo, patternCache)

	policy, criticalTypes, err := cfg.LoadPolicy()
	if err != nil {
		log.Fatalf("Failed to load policy: %v", err)
	}

	auditLog, err := audit.NewWriter(cfg.AuditRoot)
	if err != nil {
		log.Fatalf("Failed to initialize audit log: %v", err)
	}
	defer auditLog.Close()

	alerts := alert.NewEngine(cfg.AuditRoot, cfg.AlertsEnabled, criticalTypes)
	guard := pipeline.NewGuard(cls, policy, auditLog, alerts)
	reporter := report.NewReporter(auditLog, cfg.ReportTopN)
	checker := health.NewChecker(cfg, auditLog)

	log.Printf("Audit root: [%s] | Alerts: [%v] | Pattern DB: [%v] | Cache: [%v]",
		cfg.AuditRoot, cfg.AlertsEnabled, repo != nil, patternCache != nil)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("UP"))
	})
	mux.HandleFunc("GET /ready", handlers.NewHealthHandler(checker))

	mux.HandleFunc("POST /process", handlers.NewProcessHandler(guard))
	mux.HandleFunc("POST /compliance/report", handlers.NewReportHandler(reporter))
	mux.HandleFunc("POST /compliance/metrics", handlers.NewMetricsHandler(reporter))

	mux.HandleFunc("GET /patterns", handlers.NewListPatternsHandler(repo))
	mux.HandleFunc("POST /patterns", handlers.NewCreatePatternHandler(repo, patternCache))
	mux.HandleFunc("DELETE /patterns/{id}", handlers.NewDeletePatternHandler(repo, patternCache))

	mux.HandleFunc("POST /admin/reload", handlers.NewReloadCacheHandler(patternCache))

	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: mux,
	}

	// Graceful Shutdown
	go func() {
		log.Printf("Server starting on :%s...", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.ServerPort, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

// buildClassifier merges the built-in matchers with any custom database
// patterns, going through the cache when one is configured.
func buildClassifier(repo *repository.PatternRepository, patternCache *cache.PatternCache) *classifier.Classifier {
	if repo == nil {
		return classifier.New()
	}

	ctx := context.Background()
	if patternCache != nil {
		if patterns, ok := patternCache.Get(ctx); ok {
			return classifier.New(patterns...)
		}
	}

	patterns, err := repo.GetActivePatterns()
	if err != nil {
		log.Printf("Failed to load custom patterns, using built-ins only: %v", err)
		return classifier.New()
	}
	log.Printf("Classifier initialized with %d custom patterns from database", len(patterns))
	if patternCache != nil {
		patternCache.Set(ctx, patterns)
	}
	return classifier.New(patterns...)
}
