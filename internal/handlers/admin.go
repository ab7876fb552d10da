package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"gorm.io/gorm"

	"github.com/irenemg8/chatbot-sub001/internal/cache"
	"github.com/irenemg8/chatbot-sub001/internal/models"
	"github.com/irenemg8/chatbot-sub001/internal/repository"
)

// NewListPatternsHandler lists the stored custom patterns.
func NewListPatternsHandler(repo *repository.PatternRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			http.Error(w, "pattern database not configured", http.StatusServiceUnavailable)
			return
		}
		patterns, err := repo.ListPatterns()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(patterns)
	}
}

// NewCreatePatternHandler stores a new custom pattern after checking
// that its regex compiles and its level parses.
func NewCreatePatternHandler(repo *repository.PatternRepository, patternCache *cache.PatternCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			http.Error(w, "pattern database not configured", http.StatusServiceUnavailable)
			return
		}
		var p models.Pattern
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if p.Name == "" || p.Regex == "" {
			http.Error(w, "name and regex are required", http.StatusBadRequest)
			return
		}
		if _, err := regexp.Compile(p.Regex); err != nil {
			http.Error(w, "invalid regex: "+err.Error(), http.StatusBadRequest)
			return
		}
		if p.Level == "" {
			p.Level = models.LevelConfidential.String()
		}
		if _, err := models.ParseLevel(p.Level); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.IsActive = true
		if err := repo.CreatePattern(&p); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if patternCache != nil {
			patternCache.Clear(r.Context())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(p)
	}
}

// NewDeletePatternHandler removes a custom pattern by ID.
func NewDeletePatternHandler(repo *repository.PatternRepository, patternCache *cache.PatternCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			http.Error(w, "pattern database not configured", http.StatusServiceUnavailable)
			return
		}
		id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
		if err != nil {
			http.Error(w, "invalid pattern id", http.StatusBadRequest)
			return
		}
		if err := repo.DeletePattern(uint(id)); err != nil {
			if err == gorm.ErrRecordNotFound {
				http.Error(w, "pattern not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if patternCache != nil {
			patternCache.Clear(r.Context())
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewReloadCacheHandler clears the pattern cache so the next classifier
// rebuild reads fresh patterns. Admin auth via API key.
func NewReloadCacheHandler(patternCache *cache.PatternCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminKey := os.Getenv("ADMIN_API_KEY")
		if adminKey == "" || r.Header.Get("X-ADMIN-KEY") != adminKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if patternCache != nil {
			patternCache.Clear(context.Background())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","message":"Pattern cache cleared"}`))
	}
}
