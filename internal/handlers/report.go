package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/irenemg8/chatbot-sub001/internal/health"
	"github.com/irenemg8/chatbot-sub001/internal/report"
)

type reportRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// parseRange reads a closed day range, widening To to the end of its day
// so a whole-day range covers every event of the last day.
func parseRange(req reportRequest) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation("2006-01-02", req.From, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.ParseInLocation("2006-01-02", req.To, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}

// NewReportHandler renders and persists a compliance report for the
// requested date range and returns the text.
func NewReportHandler(reporter *report.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		from, to, err := parseRange(req)
		if err != nil {
			http.Error(w, "dates must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		text, err := reporter.BuildReport(from, to)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(text))
	}
}

// NewMetricsHandler returns the raw compliance metrics as JSON.
func NewMetricsHandler(reporter *report.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		from, to, err := parseRange(req)
		if err != nil {
			http.Error(w, "dates must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		metrics, err := reporter.ComputeMetrics(from, to)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics)
	}
}

// NewHealthHandler reports the audit subsystem's self-check. A healthy
// system answers 200 with an empty problem list; problems answer 503 so
// orchestration can act on them.
func NewHealthHandler(checker *health.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problems := checker.CheckHealth()
		w.Header().Set("Content-Type", "application/json")
		if len(problems) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"healthy":  len(problems) == 0,
			"problems": problems,
		})
	}
}
