package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/irenemg8/chatbot-sub001/internal/models"
	"github.com/irenemg8/chatbot-sub001/internal/pipeline"
)

// NewProcessHandler exposes the privacy pipeline to the chat flow. The
// handler is the only path through which outbound text may travel; a
// rejected response means nothing is sent to the AI provider.
func NewProcessHandler(guard *pipeline.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if req.Text == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Text field is required"})
			return
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		startTime := time.Now()
		resp, err := guard.Process(sessionID, req.Text)
		if err != nil {
			// The audit trail could not record the decision; the text
			// must not leave the machine.
			http.Error(w, "audit trail unavailable, content not processed", http.StatusServiceUnavailable)
			return
		}

		log.Printf("[AUDIT] Session: %s | Time: %s | Duration: %v | Level: %s | Strategy: %s | Redactions: %d",
			sessionID,
			startTime.Format(time.RFC3339),
			time.Since(startTime),
			resp.Level,
			resp.Strategy,
			resp.AnonymizedCount,
		)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
